// Package store persists broadcast transactions so that a wallet can
// track them until they are mined, across restarts.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"

	"github.com/alicenetorg/libwallet-go/tx"
)

var (
	bucketTxs     = []byte("txs")
	bucketPending = []byte("pending")
)

// Status is the mining status of a journaled transaction.
type Status string

const (
	StatusPending Status = "pending"
	StatusMined   Status = "mined"
)

// Record is a journaled transaction.
type Record struct {
	Hash      tx.Hash
	Status    Status
	Height    uint32
	Timestamp int64 // unix seconds of broadcast
	Tx        *tx.Draft
}

// TxJournal is a bbolt-backed journal of broadcast transactions.
type TxJournal struct {
	db     *bbolt.DB
	closed atomic.Bool
	now    func() time.Time
}

// Open opens or creates the journal at path. The parent directory is
// created if it does not exist.
func Open(path string) (*TxJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}
	err = db.Update(func(btx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketTxs, bucketPending} {
			if _, err := btx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	return &TxJournal{db: db, now: time.Now}, nil
}

// Close closes the underlying database. Later calls fail with ErrStoreClosed.
func (j *TxJournal) Close() error {
	if j.closed.Swap(true) {
		return nil
	}
	return j.db.Close()
}

// Put journals a freshly broadcast transaction as pending.
func (j *TxJournal) Put(hash tx.Hash, d *tx.Draft) error {
	if d == nil {
		return fmt.Errorf("%w: draft", ErrNilParam)
	}
	if j.closed.Load() {
		return ErrStoreClosed
	}
	rec := &Record{Hash: hash, Status: StatusPending, Timestamp: j.now().Unix(), Tx: d}
	return j.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketTxs)
		if b.Get(hash[:]) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateTx, hash)
		}
		if err := putRecord(b, rec); err != nil {
			return err
		}
		if err := btx.Bucket(bucketPending).Put(hash[:], []byte{}); err != nil {
			return fmt.Errorf("store: put pending: %w", err)
		}
		return nil
	})
}

// Get returns the record for hash.
func (j *TxJournal) Get(hash tx.Hash) (*Record, error) {
	if j.closed.Load() {
		return nil, ErrStoreClosed
	}
	var rec *Record
	err := j.db.View(func(btx *bbolt.Tx) error {
		var err error
		rec, err = getRecord(btx.Bucket(bucketTxs), hash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkMined records that hash was mined at height.
func (j *TxJournal) MarkMined(hash tx.Hash, height uint32) error {
	if j.closed.Load() {
		return ErrStoreClosed
	}
	return j.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketTxs)
		rec, err := getRecord(b, hash)
		if err != nil {
			return err
		}
		rec.Status = StatusMined
		rec.Height = height
		if err := putRecord(b, rec); err != nil {
			return err
		}
		if err := btx.Bucket(bucketPending).Delete(hash[:]); err != nil {
			return fmt.Errorf("store: delete pending: %w", err)
		}
		return nil
	})
}

// Pending returns the hashes of transactions not yet mined.
func (j *TxJournal) Pending() ([]tx.Hash, error) {
	if j.closed.Load() {
		return nil, ErrStoreClosed
	}
	var hashes []tx.Hash
	err := j.db.View(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketPending).ForEach(func(k, _ []byte) error {
			var h tx.Hash
			copy(h[:], k)
			hashes = append(hashes, h)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: list pending: %w", err)
	}
	return hashes, nil
}

// List returns every journaled record.
func (j *TxJournal) List() ([]*Record, error) {
	if j.closed.Load() {
		return nil, ErrStoreClosed
	}
	var recs []*Record
	err := j.db.View(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketTxs).ForEach(func(_, v []byte) error {
			var rec Record
			if err := cbor.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
			recs = append(recs, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return recs, nil
}

// Delete removes hash from the journal.
func (j *TxJournal) Delete(hash tx.Hash) error {
	if j.closed.Load() {
		return ErrStoreClosed
	}
	return j.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketTxs)
		if b.Get(hash[:]) == nil {
			return fmt.Errorf("%w: %s", ErrTxNotFound, hash)
		}
		if err := b.Delete(hash[:]); err != nil {
			return fmt.Errorf("store: delete tx: %w", err)
		}
		return btx.Bucket(bucketPending).Delete(hash[:])
	})
}

func putRecord(b *bbolt.Bucket, rec *Record) error {
	data, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode record: %w", err)
	}
	if err := b.Put(rec.Hash[:], data); err != nil {
		return fmt.Errorf("store: put tx: %w", err)
	}
	return nil
}

func getRecord(b *bbolt.Bucket, hash tx.Hash) (*Record, error) {
	data := b.Get(hash[:])
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, hash)
	}
	var rec Record
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("store: decode record: %w", err)
	}
	return &rec, nil
}
