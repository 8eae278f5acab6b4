package shopping

import (
	"encoding/json"
	"time"
)

// Category tags an item with one of a fixed set of product groups
type Category string

const (
	CategoryFruits     Category = "fruits"
	CategoryVegetables Category = "vegetables"
	CategoryDairy      Category = "dairy"
	CategoryMeat       Category = "meat"
	CategoryBakery     Category = "bakery"
	CategoryBeverages  Category = "beverages"
	CategorySnacks     Category = "snacks"
	CategoryFrozen     Category = "frozen"
	CategoryCleaning   Category = "cleaning"
	CategoryOther      Category = "other"
)

type categoryInfo struct {
	label string
	icon  string
	color string
}

var categoryTable = map[Category]categoryInfo{
	CategoryFruits:     {"Fruits", "🍎", "red"},
	CategoryVegetables: {"Vegetables", "🥬", "green"},
	CategoryDairy:      {"Dairy", "🥛", "blue"},
	CategoryMeat:       {"Meat", "🥩", "pink"},
	CategoryBakery:     {"Bakery", "🍞", "orange"},
	CategoryBeverages:  {"Beverages", "🥤", "purple"},
	CategorySnacks:     {"Snacks", "🍿", "yellow"},
	CategoryFrozen:     {"Frozen", "🧊", "cyan"},
	CategoryCleaning:   {"Cleaning", "🧹", "mint"},
	CategoryOther:      {"Other", "📦", "gray"},
}

// Categories returns every category in display order
func Categories() []Category {
	return []Category{
		CategoryFruits, CategoryVegetables, CategoryDairy, CategoryMeat, CategoryBakery,
		CategoryBeverages, CategorySnacks, CategoryFrozen, CategoryCleaning, CategoryOther,
	}
}

// ParseCategory returns the category for s and whether it is known
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	_, ok := categoryTable[c]
	return c, ok
}

// Label is the human readable name of the category
func (c Category) Label() string { return categoryTable[c].label }

// Icon is the display glyph of the category
func (c Category) Icon() string { return categoryTable[c].icon }

// Color is the display color name of the category
func (c Category) Color() string { return categoryTable[c].color }

// UnmarshalJSON maps unknown categories to CategoryOther so old documents still load
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseCategory(s)
	if !ok {
		parsed = CategoryOther
	}
	*c = parsed
	return nil
}

// Item is one product entry on a list
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"` // unit price
	Category    Category  `json:"category"`
	IsPurchased bool      `json:"isPurchased"`
	Notes       string    `json:"notes"`
	AddedDate   time.Time `json:"addedDate"`
}

// TotalPrice is the unit price times the quantity
func (i Item) TotalPrice() float64 {
	return i.Price * float64(i.Quantity)
}

// Validate checks the item's user-supplied fields
func (i Item) Validate() error {
	switch {
	case i.Name == "":
		return ErrEmptyName
	case i.Quantity < 1:
		return ErrInvalidItem
	case i.Price < 0:
		return ErrInvalidItem
	}
	return nil
}
