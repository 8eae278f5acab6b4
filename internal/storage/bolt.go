package storage

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/zombor/shopping-tracker/internal/ledger"
	"github.com/zombor/shopping-tracker/internal/shopping"
)

const (
	bucketName = "documents"
	listsKey   = "lists"
	ledgerKey  = "ledger"
)

// BoltDB keeps the list collection and the price ledger as two documents in
// one BoltDB bucket. It implements shopping.Store and ledger.Store.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens or creates the database at path
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func (b *BoltDB) get(key string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		// bbolt values are only valid inside the transaction
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (b *BoltDB) put(key string, data []byte) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// LoadLists returns the stored list collection
func (b *BoltDB) LoadLists() ([]shopping.List, error) {
	data, err := b.get(listsKey)
	if err != nil {
		return nil, err
	}
	return shopping.DecodeLists(data)
}

// SaveLists replaces the stored list collection
func (b *BoltDB) SaveLists(lists []shopping.List) error {
	data, err := shopping.EncodeLists(lists)
	if err != nil {
		return err
	}
	return b.put(listsKey, data)
}

// LoadPrices returns the stored ledger entries
func (b *BoltDB) LoadPrices() ([]float64, error) {
	data, err := b.get(ledgerKey)
	if err != nil {
		return nil, err
	}
	return ledger.DecodePrices(data)
}

// SavePrices replaces the stored ledger entries
func (b *BoltDB) SavePrices(prices []float64) error {
	data, err := ledger.EncodePrices(prices)
	if err != nil {
		return err
	}
	return b.put(ledgerKey, data)
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
