package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Summary renders the ledger as shareable text:
//
//	Shopping total: 37.50
//	Items: 2
//
//	Prices:
//	1. 12.50
//	2. 25.00
func (l *Ledger) Summary() string {
	prices := l.Entries()

	total := decimal.Zero
	lines := make([]string, len(prices))
	for i, p := range prices {
		d := decimal.NewFromFloat(p)
		total = total.Add(d)
		lines[i] = fmt.Sprintf("%d. %s", i+1, d.StringFixed(2))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Shopping total: %s\n", total.StringFixed(2))
	fmt.Fprintf(&b, "Items: %d\n", len(prices))
	if len(lines) > 0 {
		b.WriteString("\nPrices:\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
