// Package stats aggregates shopping items for reports. Every function is pure
// and works on a snapshot of items taken from the repository.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/zombor/shopping-tracker/internal/shopping"
)

// DefaultTopItems is the number of entries returned by TopPurchasedItems when n <= 0
const DefaultTopItems = 5

// DefaultMonthsBack is the window used by the spending trend
const DefaultMonthsBack = 6

// CategoryTotal is the spend and item count for one category
type CategoryTotal struct {
	Category shopping.Category `json:"category"`
	Total    float64           `json:"total"`
	Count    int               `json:"count"`
}

// ItemRank is one entry of the most purchased items
type ItemRank struct {
	Name     string            `json:"name"`
	Count    int               `json:"count"`
	Total    float64           `json:"total"`
	Category shopping.Category `json:"category"`
}

// MonthAmount is the purchased spend for one calendar month
type MonthAmount struct {
	Label  string  `json:"label"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Amount float64 `json:"amount"`
}

// CategoryBreakdown groups items by category, highest total first. Equal
// totals keep the order in which the categories were first seen.
func CategoryBreakdown(items []shopping.Item) []CategoryTotal {
	index := make(map[shopping.Category]int)
	var out []CategoryTotal
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(out)
			index[item.Category] = i
			out = append(out, CategoryTotal{Category: item.Category})
		}
		out[i].Total += item.TotalPrice()
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Total > out[b].Total
	})
	if out == nil {
		out = []CategoryTotal{}
	}
	return out
}

// TopPurchasedItems groups purchased items by name and returns the n most
// frequent. The category of a group is the one of its first item.
func TopPurchasedItems(items []shopping.Item, n int) []ItemRank {
	if n <= 0 {
		n = DefaultTopItems
	}
	index := make(map[string]int)
	var out []ItemRank
	for _, item := range items {
		if !item.IsPurchased {
			continue
		}
		i, ok := index[item.Name]
		if !ok {
			i = len(out)
			index[item.Name] = i
			out = append(out, ItemRank{Name: item.Name, Category: item.Category})
		}
		out[i].Count++
		out[i].Total += item.TotalPrice()
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []ItemRank{}
	}
	return out
}

// MonthlySpending sums purchased items per calendar month for the monthsBack
// months ending with the month of now, oldest first
func MonthlySpending(items []shopping.Item, monthsBack int, now time.Time) []MonthAmount {
	if monthsBack <= 0 {
		monthsBack = DefaultMonthsBack
	}
	loc := now.Location()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	out := make([]MonthAmount, monthsBack)
	for i := range out {
		m := first.AddDate(0, i-monthsBack+1, 0)
		out[i] = MonthAmount{
			Label: m.Format("Jan 2006"),
			Year:  m.Year(),
			Month: int(m.Month()),
		}
	}

	for _, item := range items {
		if !item.IsPurchased {
			continue
		}
		y, m, _ := item.AddedDate.In(loc).Date()
		offset := (y-first.Year())*12 + int(m) - int(first.Month())
		i := monthsBack - 1 + offset
		if i >= 0 && i < monthsBack {
			out[i].Amount += item.TotalPrice()
		}
	}
	return out
}

// Overview is the headline figures across every list
type Overview struct {
	Lists      int     `json:"lists"`
	Items      int     `json:"items"`
	Purchased  int     `json:"purchased"`
	TotalSpent float64 `json:"total_spent"`
}

// Summarize computes the overview of a set of lists
func Summarize(lists []shopping.List) Overview {
	o := Overview{Lists: len(lists)}
	for _, l := range lists {
		o.Items += l.TotalItems()
		o.Purchased += l.PurchasedItems()
		o.TotalSpent += l.PurchasedCost()
	}
	return o
}

// SummarizeTimeframe computes the overview counting only items added within
// tf. Every list is still counted.
func SummarizeTimeframe(lists []shopping.List, tf Timeframe, now time.Time) Overview {
	filtered := make([]shopping.List, len(lists))
	for i, l := range lists {
		filtered[i] = l
		filtered[i].Items = FilterTimeframe(l.Items, tf, now)
	}
	return Summarize(filtered)
}

// Timeframe narrows statistics to a calendar period around now
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
	TimeframeAll   Timeframe = "all"
)

// ParseTimeframe validates a timeframe name; empty means all
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(s); tf {
	case TimeframeWeek, TimeframeMonth, TimeframeYear, TimeframeAll:
		return tf, nil
	case "":
		return TimeframeAll, nil
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// FilterTimeframe keeps items added in the same ISO week, calendar month or
// calendar year as now
func FilterTimeframe(items []shopping.Item, tf Timeframe, now time.Time) []shopping.Item {
	if tf == TimeframeAll || tf == "" {
		return items
	}
	loc := now.Location()
	year, month, _ := now.Date()
	isoYear, isoWeek := now.ISOWeek()

	out := make([]shopping.Item, 0, len(items))
	for _, item := range items {
		added := item.AddedDate.In(loc)
		var keep bool
		switch tf {
		case TimeframeWeek:
			y, w := added.ISOWeek()
			keep = y == isoYear && w == isoWeek
		case TimeframeMonth:
			keep = added.Year() == year && added.Month() == month
		case TimeframeYear:
			keep = added.Year() == year
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}

// Purchased keeps only purchased items
func Purchased(items []shopping.Item) []shopping.Item {
	out := make([]shopping.Item, 0, len(items))
	for _, item := range items {
		if item.IsPurchased {
			out = append(out, item)
		}
	}
	return out
}
