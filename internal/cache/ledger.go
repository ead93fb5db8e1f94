// Package cache persists a download ledger so repeated runs can skip
// archives that are already on disk with a matching size and checksum.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/nucdata/nucdata/internal/domain"
)

// Ensure Ledger implements domain.Ledger
var _ domain.Ledger = (*Ledger)(nil)

// record is the stored value for one completed download.
type record struct {
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Options contains ledger configuration options
type Options struct {
	Directory string
	InMemory  bool
	Logger    bool
}

// Ledger is a badger-backed download ledger.
type Ledger struct {
	db *badger.DB
}

// NewLedger opens (or creates) the ledger database.
func NewLedger(opts Options) (*Ledger, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Directory == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			opts.Directory = homeDir + "/.nucdata/ledger"
		}
		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Directory)
	}

	if !opts.Logger {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// Lookup returns the recorded size and checksum for a URL.
func (l *Ledger) Lookup(ctx context.Context, url string) (int64, string, bool) {
	var rec record
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(GenerateKey(url)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return 0, "", false
	}
	return rec.Size, rec.Checksum, true
}

// Record stores the size and checksum for a URL.
func (l *Ledger) Record(ctx context.Context, url string, size int64, checksum string) error {
	rec := record{URL: url, Size: size, Checksum: checksum, FetchedAt: time.Now()}
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(GenerateKey(url)), val)
	})
}

// Close releases ledger resources
func (l *Ledger) Close() error {
	return l.db.Close()
}
