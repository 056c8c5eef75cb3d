package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/crytic/abibind/logging"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// generationsBucket is the bucket generation entries are stored in, keyed by contract name.
var generationsBucket = []byte("generations")

// GenerationCache provides a thread-safe record of the bindings generated so far, persisted to disk. Writes are
// buffered in memory and flushed in batches.
type GenerationCache struct {
	db     *bbolt.DB
	logger *logging.Logger

	entriesLock sync.RWMutex
	entries     map[string]Entry

	pendingWriteMutex sync.Mutex
	pendingWrites     []pendingWrite
	flushThreshold    int

	closeOnce sync.Once
	closeErr  error
}

type pendingWrite struct {
	key   []byte
	value []byte
}

// Open opens the generation cache database at the given path, creating it and its directory if needed. The cache
// is closed when the context is cancelled, if it was not closed before.
func Open(ctx context.Context, path string) (*GenerationCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create cache directory")
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open cache database '%s'", path)
	}

	// create the bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(generationsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}

	c := &GenerationCache{
		db:             db,
		logger:         logging.GlobalLogger.NewSubLogger("module", logging.CACHE_SERVICE),
		entries:        make(map[string]Entry),
		pendingWrites:  []pendingWrite{},
		flushThreshold: 25,
	}

	go func() {
		<-ctx.Done()
		if err := c.Close(); err != nil {
			c.logger.Error("Failed to close the generation cache", err)
		}
	}()

	return c, nil
}

// Get returns the last generation recorded for the given contract, or ErrCacheMiss if there is none.
func (c *GenerationCache) Get(contract string) (*Entry, error) {
	c.entriesLock.RLock()
	entry, ok := c.entries[contract]
	c.entriesLock.RUnlock()
	if ok {
		return &entry, nil
	}

	found := false
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(generationsBucket).Get([]byte(contract))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not read the cache entry of '%s'", contract)
	}
	if !found {
		return nil, ErrCacheMiss
	}

	c.entriesLock.Lock()
	c.entries[contract] = entry
	c.entriesLock.Unlock()
	return &entry, nil
}

// IsFresh returns whether the binding of the given contract was generated from the given hash and its output file
// still exists.
func (c *GenerationCache) IsFresh(contract string, hash string) (*Entry, bool) {
	entry, err := c.Get(contract)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("Ignoring unreadable cache entry of ", contract, err)
		}
		return nil, false
	}
	if entry.Hash != hash {
		return entry, false
	}
	if _, err = os.Stat(entry.OutputFile); err != nil {
		return entry, false
	}
	return entry, true
}

// Put records a generation of the given contract.
func (c *GenerationCache) Put(contract string, entry Entry) error {
	serialized, err := json.Marshal(entry)
	if err != nil {
		return errors.WithStack(err)
	}

	c.entriesLock.Lock()
	c.entries[contract] = entry
	c.entriesLock.Unlock()

	c.pendingWriteMutex.Lock()
	defer c.pendingWriteMutex.Unlock()
	c.pendingWrites = append(c.pendingWrites, pendingWrite{key: []byte(contract), value: serialized})
	if len(c.pendingWrites) >= c.flushThreshold {
		return c.flushWrites()
	}
	return nil
}

// Flush writes every buffered entry to disk.
func (c *GenerationCache) Flush() error {
	c.pendingWriteMutex.Lock()
	defer c.pendingWriteMutex.Unlock()
	return c.flushWrites()
}

// flushWrites writes the pending writes in one transaction. The caller must hold pendingWriteMutex.
func (c *GenerationCache) flushWrites() error {
	if len(c.pendingWrites) == 0 {
		return nil
	}
	err := c.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(generationsBucket)
		for _, pw := range c.pendingWrites {
			if err := bucket.Put(pw.key, pw.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "could not write to the generation cache")
	}
	c.logger.Debug("Flushed ", len(c.pendingWrites), " generation cache entries")
	c.pendingWrites = c.pendingWrites[:0]
	return nil
}

// Close flushes the buffered entries and closes the database. Calling it again returns the first result.
func (c *GenerationCache) Close() error {
	c.closeOnce.Do(func() {
		flushErr := c.Flush()
		closeErr := c.db.Close()
		if flushErr != nil {
			c.closeErr = flushErr
		} else if closeErr != nil {
			c.closeErr = errors.WithStack(closeErr)
		}
	})
	return c.closeErr
}
