// Package storage implements the persistence ports of the list repository
// and the price ledger.
package storage

import (
	"fmt"

	"github.com/zombor/shopping-tracker/internal/ledger"
	"github.com/zombor/shopping-tracker/internal/shopping"
)

// Store persists both documents
type Store interface {
	shopping.Store
	ledger.Store
	Close() error
}

var (
	_ Store = (*BoltDB)(nil)
	_ Store = (*FileStore)(nil)
)

// Open returns the store of the given kind: "bolt" opens the database file at
// path, "file" uses path as a directory of JSON documents
func Open(kind, path string) (Store, error) {
	switch kind {
	case "bolt":
		db, err := NewBoltDB(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "file":
		fs, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
	return nil, fmt.Errorf("unknown store type %q (valid: bolt, file)", kind)
}
