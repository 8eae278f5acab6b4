package shopping

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName    = errors.New("name is required")
	ErrInvalidItem  = errors.New("quantity must be positive and price non-negative")
	ErrListNotFound = errors.New("list not found")
	ErrItemNotFound = errors.New("item not found")
)

// Store persists the full list collection as one document
type Store interface {
	// LoadLists returns the stored collection, empty when nothing was saved yet
	LoadLists() ([]List, error)

	// SaveLists replaces the stored collection
	SaveLists(lists []List) error
}

// IDGenerator generates unique IDs for lists and items
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Repository owns the shopping lists. Every mutation runs under one mutex,
// is applied to a copy of the collection and only published once the store
// accepted the new document.
type Repository struct {
	mu          sync.Mutex
	lists       []List
	currentID   string
	strict      bool
	store       Store
	idGenerator IDGenerator
	timeSource  TimeSource
	logger      *slog.Logger
}

// NewRepository loads the collection from store, seeding a sample list when
// it is empty
func NewRepository(store Store, logger *slog.Logger) *Repository {
	return NewRepositoryWithDeps(store, logger, &uuidGenerator{}, &defaultTimeSource{})
}

// NewRepositoryWithDeps creates a Repository with custom dependencies for testing
func NewRepositoryWithDeps(store Store, logger *slog.Logger, idGen IDGenerator, timeSrc TimeSource) *Repository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Repository{
		store:       store,
		idGenerator: idGen,
		timeSource:  timeSrc,
		logger:      logger.With("component", "lists"),
	}
	r.load()
	return r
}

func (r *Repository) load() {
	lists, err := r.store.LoadLists()
	if err != nil {
		r.logger.Warn("Failed to load lists, starting empty", "error", err)
		lists = nil
	}
	r.lists = lists
	if len(r.lists) > 0 {
		r.currentID = r.lists[0].ID
		return
	}

	sample := r.sampleList()
	if err := r.commit([]List{sample}); err != nil {
		r.logger.Warn("Failed to save sample list", "error", err)
		r.lists = []List{sample}
	}
	r.currentID = sample.ID
}

func (r *Repository) sampleList() List {
	now := r.timeSource.Now()
	item := func(name string, qty int, price float64, c Category) Item {
		return Item{ID: r.idGenerator.Generate(), Name: name, Quantity: qty, Price: price, Category: c, AddedDate: now}
	}
	return List{
		ID:   r.idGenerator.Generate(),
		Name: "Weekly Shopping",
		Items: []Item{
			item("Apples", 2, 10.0, CategoryFruits),
			item("Milk", 1, 15.0, CategoryDairy),
			item("Bread", 3, 5.0, CategoryBakery),
			item("Tomatoes", 1, 8.0, CategoryVegetables),
		},
		CreatedDate: now,
	}
}

// SetStrict makes lookups of unknown list or item ids return ErrListNotFound
// or ErrItemNotFound instead of silently doing nothing
func (r *Repository) SetStrict(strict bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strict = strict
}

// commit persists next and publishes it. Must be called with mu held.
func (r *Repository) commit(next []List) error {
	if err := r.store.SaveLists(next); err != nil {
		return fmt.Errorf("saving lists: %w", err)
	}
	r.lists = next
	return nil
}

// snapshot deep-copies the collection. Must be called with mu held.
func (r *Repository) snapshot() []List {
	out := make([]List, len(r.lists))
	for i, l := range r.lists {
		out[i] = l.clone()
	}
	return out
}

func (r *Repository) indexOf(id string) int {
	for i, l := range r.lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) missing(err error, id string) error {
	r.logger.Debug("Lookup missed", "id", id, "error", err)
	if r.strict {
		return fmt.Errorf("%w: %s", err, id)
	}
	return nil
}

// Lists returns a copy of every list, newest first
func (r *Repository) Lists() []List {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// List returns a copy of the list with the given id or nil
func (r *Repository) List(id string) *List {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return nil
	}
	l := r.lists[idx].clone()
	return &l
}

// Current returns the list the user is working on, or nil when there are none
func (r *Repository) Current() *List {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(r.currentID)
	if idx < 0 {
		return nil
	}
	l := r.lists[idx].clone()
	return &l
}

// SetCurrent selects a list as current
func (r *Repository) SetCurrent(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(id) < 0 {
		return r.missing(ErrListNotFound, id)
	}
	r.currentID = id
	return nil
}

// ActiveList returns the first list that is not archived, or nil
func (r *Repository) ActiveList() *List {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lists {
		if !l.IsArchived {
			c := l.clone()
			return &c
		}
	}
	return nil
}

// Create prepends a new empty list and makes it current
func (r *Repository) Create(name string) (*List, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := List{
		ID:          r.idGenerator.Generate(),
		Name:        name,
		Items:       []Item{},
		CreatedDate: r.timeSource.Now(),
	}
	next := append([]List{list}, r.snapshot()...)
	if err := r.commit(next); err != nil {
		return nil, err
	}
	r.currentID = list.ID
	out := list.clone()
	return &out, nil
}

// Delete removes a list. Deleting the current list makes the new first list current.
func (r *Repository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return r.missing(ErrListNotFound, id)
	}
	next := r.snapshot()
	next = append(next[:idx], next[idx+1:]...)
	if err := r.commit(next); err != nil {
		return err
	}
	if r.currentID == id {
		r.currentID = ""
		if len(r.lists) > 0 {
			r.currentID = r.lists[0].ID
		}
	}
	return nil
}

// ToggleArchived flips the archived flag of a list
func (r *Repository) ToggleArchived(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return r.missing(ErrListNotFound, id)
	}
	next := r.snapshot()
	next[idx].IsArchived = !next[idx].IsArchived
	return r.commit(next)
}

// Duplicate prepends a copy of a list with fresh ids, nothing purchased and
// the archived flag cleared
func (r *Repository) Duplicate(id string) (*List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, r.missing(ErrListNotFound, id)
	}
	src := r.lists[idx]
	dup := List{
		ID:          r.idGenerator.Generate(),
		Name:        src.Name + " (copy)",
		Items:       make([]Item, len(src.Items)),
		CreatedDate: r.timeSource.Now(),
	}
	for i, item := range src.Items {
		item.ID = r.idGenerator.Generate()
		item.IsPurchased = false
		dup.Items[i] = item
	}

	next := append([]List{dup}, r.snapshot()...)
	if err := r.commit(next); err != nil {
		return nil, err
	}
	out := dup.clone()
	return &out, nil
}

// AddItem appends an item to a list. A missing id or date is filled in.
func (r *Repository) AddItem(listID string, item Item) (*Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.Category = normalizeCategory(item.Category)

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(listID)
	if idx < 0 {
		return nil, r.missing(ErrListNotFound, listID)
	}
	if item.ID == "" {
		item.ID = r.idGenerator.Generate()
	}
	if item.AddedDate.IsZero() {
		item.AddedDate = r.timeSource.Now()
	}
	next := r.snapshot()
	next[idx].Items = append(next[idx].Items, item)
	if err := r.commit(next); err != nil {
		return nil, err
	}
	return &item, nil
}

// normalizeCategory maps categories outside the fixed set to CategoryOther,
// the same way a stored document decodes them
func normalizeCategory(c Category) Category {
	if _, ok := categoryTable[c]; !ok {
		return CategoryOther
	}
	return c
}

// UpdateItem replaces the item with the same id
func (r *Repository) UpdateItem(listID string, item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	item.Category = normalizeCategory(item.Category)
	return r.mutateItem(listID, item.ID, func(existing *Item) {
		*existing = item
	})
}

// TogglePurchased flips the purchased flag of an item
func (r *Repository) TogglePurchased(listID, itemID string) error {
	return r.mutateItem(listID, itemID, func(existing *Item) {
		existing.IsPurchased = !existing.IsPurchased
	})
}

func (r *Repository) mutateItem(listID, itemID string, fn func(*Item)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(listID)
	if idx < 0 {
		return r.missing(ErrListNotFound, listID)
	}
	itemIdx := r.lists[idx].itemIndex(itemID)
	if itemIdx < 0 {
		return r.missing(ErrItemNotFound, itemID)
	}
	next := r.snapshot()
	fn(&next[idx].Items[itemIdx])
	return r.commit(next)
}

// DeleteItem removes an item from a list
func (r *Repository) DeleteItem(listID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(listID)
	if idx < 0 {
		return r.missing(ErrListNotFound, listID)
	}
	itemIdx := r.lists[idx].itemIndex(itemID)
	if itemIdx < 0 {
		return r.missing(ErrItemNotFound, itemID)
	}
	next := r.snapshot()
	items := next[idx].Items
	next[idx].Items = append(items[:itemIdx], items[itemIdx+1:]...)
	return r.commit(next)
}

// ClearPurchased removes every purchased item from a list
func (r *Repository) ClearPurchased(listID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(listID)
	if idx < 0 {
		return r.missing(ErrListNotFound, listID)
	}
	next := r.snapshot()
	kept := make([]Item, 0, len(next[idx].Items))
	for _, item := range next[idx].Items {
		if !item.IsPurchased {
			kept = append(kept, item)
		}
	}
	next[idx].Items = kept
	return r.commit(next)
}
