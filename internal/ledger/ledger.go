package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

var (
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrIndexOutOfRange = errors.New("ledger index out of range")
)

// Store persists the ordered price entries as one document
type Store interface {
	// LoadPrices returns the stored entries, empty when nothing was saved yet
	LoadPrices() ([]float64, error)

	// SavePrices replaces the stored entries
	SavePrices(prices []float64) error
}

// Ledger is the ordered list of accepted prices with a running total
type Ledger struct {
	mu     sync.Mutex
	prices []float64
	total  float64
	store  Store
	logger *slog.Logger
}

// New loads the ledger from store. Unreadable documents start an empty ledger.
func New(store Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &Ledger{
		store:  store,
		logger: logger.With("component", "ledger"),
	}

	prices, err := store.LoadPrices()
	if err != nil {
		l.logger.Warn("Failed to load ledger, starting empty", "error", err)
		prices = nil
	}
	l.prices = prices
	l.total = sum(prices)
	return l
}

func sum(prices []float64) float64 {
	var total float64
	for _, p := range prices {
		total += p
	}
	return total
}

// commit persists next and publishes it. Must be called with mu held.
func (l *Ledger) commit(next []float64) error {
	if err := l.store.SavePrices(next); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}
	l.prices = next
	l.total = sum(next)
	return nil
}

func (l *Ledger) copyPrices() []float64 {
	out := make([]float64, len(l.prices))
	copy(out, l.prices)
	return out
}

// Append adds a price at the end of the ledger
func (l *Ledger) Append(price float64) error {
	if !(price > 0) {
		return ErrInvalidPrice
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit(append(l.copyPrices(), price))
}

// RemoveAt deletes the entry at index
func (l *Ledger) RemoveAt(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.prices) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	next := l.copyPrices()
	return l.commit(append(next[:index], next[index+1:]...))
}

// Clear removes every entry
func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit([]float64{})
}

// Total is the sum of all entries
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Entries returns a copy of the entries in capture order
func (l *Ledger) Entries() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyPrices()
}

// Len is the number of entries
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prices)
}

// EncodePrices serializes entries as a JSON array of numbers
func EncodePrices(prices []float64) ([]byte, error) {
	if prices == nil {
		prices = []float64{}
	}
	data, err := json.Marshal(prices)
	if err != nil {
		return nil, fmt.Errorf("marshaling prices: %w", err)
	}
	return data, nil
}

// DecodePrices parses a document written by EncodePrices
func DecodePrices(data []byte) ([]float64, error) {
	if len(data) == 0 {
		return []float64{}, nil
	}
	var prices []float64
	if err := json.Unmarshal(data, &prices); err != nil {
		return nil, fmt.Errorf("unmarshaling prices: %w", err)
	}
	return prices, nil
}
