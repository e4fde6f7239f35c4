// Package store persists the local chain: the latest state snapshot and the
// receipts in a bbolt file, and the journal of committed entries in a
// write-ahead log.
package store

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	boltName = "state.db"

	stateBucket    = "state"
	receiptsBucket = "receipts"
	metaBucket     = "meta"

	latestKey  = "latest"
	heightKey  = "height"
	versionKey = "version"

	schemaVersion = "1"
)

// ErrLocked means another process holds the database.
var ErrLocked = errors.New("cannot obtain database lock, database may be in use by another process")

// BoltStore keeps snapshots and receipts in dir/state.db.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the store under dir.
func OpenBolt(dir string) (*BoltStore, error) {
	if len(dir) == 0 {
		return nil, errors.New("bolt store dir path can not be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}

	db, err := bolt.Open(filepath.Join(dir, boltName), 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		if err == bolt.ErrTimeout {
			return nil, ErrLocked
		}
		return nil, errors.Wrap(err, "opening bolt store")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{stateBucket, receiptsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		meta := tx.Bucket([]byte(metaBucket))
		if v := meta.Get([]byte(versionKey)); v != nil && string(v) != schemaVersion {
			return errors.Errorf("unsupported store version %s", v)
		}
		return meta.Put([]byte(versionKey), []byte(schemaVersion))
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialising bolt store")
	}
	return &BoltStore{db: db}, nil
}

// LoadState returns the latest snapshot, or nil if none was written.
func (s *BoltStore) LoadState() (data []byte, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(stateBucket)).Get([]byte(latestKey)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, errors.Wrap(err, "loading state")
}

// Commit writes the snapshot and the receipt in one transaction.
func (s *BoltStore) Commit(height uint64, state []byte, _ common.Hash, receipt []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(stateBucket)).Put([]byte(latestKey), state); err != nil {
			return err
		}
		if receipt != nil {
			if err := tx.Bucket([]byte(receiptsBucket)).Put(heightKeyBytes(height), receipt); err != nil {
				return err
			}
		}
		return tx.Bucket([]byte(metaBucket)).Put([]byte(heightKey), heightKeyBytes(height))
	})
	return errors.Wrapf(err, "committing block %d", height)
}

// Receipts calls fn for every receipt in height order.
func (s *BoltStore) Receipts(fn func(height uint64, receipt []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(receiptsBucket)).ForEach(func(k, v []byte) error {
			return fn(binary.BigEndian.Uint64(k), v)
		})
	})
}

// Height returns the height of the latest snapshot.
func (s *BoltStore) Height() (height uint64, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(metaBucket)).Get([]byte(heightKey)); v != nil {
			height = binary.BigEndian.Uint64(v)
		}
		return nil
	})
	return height, err
}

// Close releases the database lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func heightKeyBytes(h uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, h)
	return b
}
