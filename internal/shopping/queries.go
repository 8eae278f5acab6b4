package shopping

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilteredItems returns the items of a list whose name contains searchText
// (case-insensitively, when non-empty) and whose category equals category
// (when non-nil). Unpurchased items come first; relative order is otherwise kept.
func (r *Repository) FilteredItems(listID, searchText string, category *Category) []Item {
	list := r.List(listID)
	if list == nil {
		return []Item{}
	}
	return FilterItems(list.Items, searchText, category)
}

// FilterItems applies the FilteredItems rules to an item slice
func FilterItems(items []Item, searchText string, category *Category) []Item {
	fold := cases.Fold()
	needle := fold.String(searchText)

	var pending, purchased []Item
	for _, item := range items {
		if needle != "" && !strings.Contains(fold.String(item.Name), needle) {
			continue
		}
		if category != nil && item.Category != *category {
			continue
		}
		if item.IsPurchased {
			purchased = append(purchased, item)
		} else {
			pending = append(pending, item)
		}
	}
	return append(append(make([]Item, 0, len(pending)+len(purchased)), pending...), purchased...)
}

// AllItems flattens the items of every list
func (r *Repository) AllItems() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []Item
	for _, l := range r.lists {
		items = append(items, l.Items...)
	}
	return items
}

// TotalSpentInCurrentMonth sums purchased items added during the current calendar month
func (r *Repository) TotalSpentInCurrentMonth() float64 {
	now := r.timeSource.Now()
	year, month, _ := now.Date()

	var total float64
	for _, item := range r.AllItems() {
		if !item.IsPurchased {
			continue
		}
		y, m, _ := item.AddedDate.In(now.Location()).Date()
		if y == year && m == month {
			total += item.TotalPrice()
		}
	}
	return total
}

// MostPurchasedCategory returns the category with the most purchased items.
// Ties go to the category seen first; false when nothing was purchased.
func (r *Repository) MostPurchasedCategory() (Category, bool) {
	counts := make(map[Category]int)
	var order []Category
	for _, item := range r.AllItems() {
		if !item.IsPurchased {
			continue
		}
		if _, seen := counts[item.Category]; !seen {
			order = append(order, item.Category)
		}
		counts[item.Category]++
	}

	var best Category
	bestCount := 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best, bestCount > 0
}
