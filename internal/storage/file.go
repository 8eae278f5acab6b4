package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/zombor/shopping-tracker/internal/ledger"
	"github.com/zombor/shopping-tracker/internal/shopping"
)

const (
	listsFile  = "lists.json"
	ledgerFile = "ledger.json"
)

// FileStore keeps each document in its own JSON file. Writes go through a
// temp file and rename, so a crash never leaves a half-written document.
type FileStore struct {
	basePath string
}

// NewFileStore creates a FileStore rooted at basePath
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (f *FileStore) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.basePath, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

func (f *FileStore) write(name string, data []byte) error {
	if err := atomic.WriteFile(filepath.Join(f.basePath, name), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// LoadLists returns the stored list collection
func (f *FileStore) LoadLists() ([]shopping.List, error) {
	data, err := f.read(listsFile)
	if err != nil {
		return nil, err
	}
	return shopping.DecodeLists(data)
}

// SaveLists replaces the stored list collection
func (f *FileStore) SaveLists(lists []shopping.List) error {
	data, err := shopping.EncodeLists(lists)
	if err != nil {
		return err
	}
	return f.write(listsFile, data)
}

// LoadPrices returns the stored ledger entries
func (f *FileStore) LoadPrices() ([]float64, error) {
	data, err := f.read(ledgerFile)
	if err != nil {
		return nil, err
	}
	return ledger.DecodePrices(data)
}

// SavePrices replaces the stored ledger entries
func (f *FileStore) SavePrices(prices []float64) error {
	data, err := ledger.EncodePrices(prices)
	if err != nil {
		return err
	}
	return f.write(ledgerFile, data)
}

// Close is a no-op; it lets FileStore and BoltDB be used interchangeably
func (f *FileStore) Close() error {
	return nil
}
