package cache

import (
	"errors"
	"path"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// BadgerCache is an embedded on-disk cache; no external service needed
type BadgerCache struct {
	Conn   *badger.DB
	Prefix string
}

// NewBadgerCache opens (or creates) a badger database at dir
func NewBadgerCache(dir, prefix string) (*BadgerCache, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerCache{Conn: db, Prefix: prefix}, nil
}

// Close releases the underlying database
func (b *BadgerCache) Close() error {
	return b.Conn.Close()
}

// RunGC reclaims value log space; meant to be called periodically
func (b *BadgerCache) RunGC() {
	_ = b.Conn.RunValueLogGC(0.7)
}

func (b *BadgerCache) Has(key string) bool {
	_, err := b.Get(key)
	return err == nil
}

func (b *BadgerCache) Get(key string) ([]byte, error) {
	var value []byte
	err := b.Conn.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(b.Prefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte{}, val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *BadgerCache) Set(key string, value []byte, ttlSeconds ...int) error {
	return b.Conn.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(b.Prefix+key), value)
		if len(ttlSeconds) > 0 {
			entry = entry.WithTTL(time.Duration(ttlSeconds[0]) * time.Second)
		}
		return txn.SetEntry(entry)
	})
}

func (b *BadgerCache) Forget(key string) error {
	return b.Conn.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(b.Prefix + key))
	})
}

// ForgetByMatch removes every key matching the path.Match pattern
func (b *BadgerCache) ForgetByMatch(pattern string) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false

	var keysToDelete [][]byte
	err := b.Conn.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			match, err := path.Match(b.Prefix+pattern, string(key))
			if err != nil {
				return err
			}
			if match {
				keysToDelete = append(keysToDelete, key)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return b.Conn.Update(func(txn *badger.Txn) error {
		for _, key := range keysToDelete {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BadgerCache) Flush() error {
	return b.Conn.DropAll()
}
