package shopping

import "time"

// List is a named collection of items. The aggregates below are computed on
// every call and never persisted.
type List struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Items       []Item    `json:"items"`
	CreatedDate time.Time `json:"createdDate"`
	IsArchived  bool      `json:"isArchived"`
}

// TotalItems is the number of items on the list
func (l List) TotalItems() int {
	return len(l.Items)
}

// PurchasedItems is the number of items marked purchased
func (l List) PurchasedItems() int {
	n := 0
	for _, item := range l.Items {
		if item.IsPurchased {
			n++
		}
	}
	return n
}

// TotalCost sums TotalPrice over every item
func (l List) TotalCost() float64 {
	var total float64
	for _, item := range l.Items {
		total += item.TotalPrice()
	}
	return total
}

// PurchasedCost sums TotalPrice over purchased items
func (l List) PurchasedCost() float64 {
	var total float64
	for _, item := range l.Items {
		if item.IsPurchased {
			total += item.TotalPrice()
		}
	}
	return total
}

// RemainingCost is what is left to buy
func (l List) RemainingCost() float64 {
	return l.TotalCost() - l.PurchasedCost()
}

// Progress is the purchased fraction of items, 0 for an empty list
func (l List) Progress() float64 {
	if len(l.Items) == 0 {
		return 0
	}
	return float64(l.PurchasedItems()) / float64(len(l.Items))
}

// clone returns a deep copy so callers never share the items slice
func (l List) clone() List {
	c := l
	c.Items = make([]Item, len(l.Items))
	copy(c.Items, l.Items)
	return c
}

func (l List) itemIndex(id string) int {
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
