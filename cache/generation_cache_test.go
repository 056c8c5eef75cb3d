package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerationCachePersistence verifies entries survive closing and reopening the cache.
func TestGenerationCachePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	entry := Entry{
		Hash:        "abc123",
		OutputFile:  "bindings/token.go",
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}

	generationCache, err := Open(context.Background(), path)
	require.NoError(t, err)
	_, err = generationCache.Get("Token")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, generationCache.Put("Token", entry))
	cached, err := generationCache.Get("Token")
	require.NoError(t, err)
	assert.EqualValues(t, entry, *cached)
	require.NoError(t, generationCache.Close())
	require.NoError(t, generationCache.Close())

	generationCache, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer generationCache.Close()

	cached, err = generationCache.Get("Token")
	require.NoError(t, err)
	assert.EqualValues(t, entry.Hash, cached.Hash)
	assert.EqualValues(t, entry.OutputFile, cached.OutputFile)
	assert.True(t, entry.GeneratedAt.Equal(cached.GeneratedAt))
}

// TestGenerationCacheIsFresh verifies a generation is only fresh for the same hash while its output file exists.
func TestGenerationCacheIsFresh(t *testing.T) {
	directory := t.TempDir()
	outputFile := filepath.Join(directory, "token.go")
	require.NoError(t, os.WriteFile(outputFile, []byte("package bindings\n"), 0644))

	generationCache, err := Open(context.Background(), filepath.Join(directory, "cache.db"))
	require.NoError(t, err)
	defer generationCache.Close()

	_, fresh := generationCache.IsFresh("Token", "abc123")
	assert.False(t, fresh)

	require.NoError(t, generationCache.Put("Token", Entry{Hash: "abc123", OutputFile: outputFile, GeneratedAt: time.Now()}))
	entry, fresh := generationCache.IsFresh("Token", "abc123")
	assert.True(t, fresh)
	assert.EqualValues(t, outputFile, entry.OutputFile)

	_, fresh = generationCache.IsFresh("Token", "def456")
	assert.False(t, fresh)

	require.NoError(t, os.Remove(outputFile))
	_, fresh = generationCache.IsFresh("Token", "abc123")
	assert.False(t, fresh)
}

// TestGenerationCacheConcurrentWrites verifies concurrent writers are batched without losing entries.
func TestGenerationCacheConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	generationCache, err := Open(context.Background(), path)
	require.NoError(t, err)

	writers := 8
	writesPerWriter := 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < writesPerWriter; i++ {
				name := fmt.Sprintf("Contract%d_%d", w, i)
				assert.NoError(t, generationCache.Put(name, Entry{Hash: name}))
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, generationCache.Close())

	generationCache, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer generationCache.Close()
	for w := 0; w < writers; w++ {
		for i := 0; i < writesPerWriter; i++ {
			name := fmt.Sprintf("Contract%d_%d", w, i)
			entry, err := generationCache.Get(name)
			if assert.NoError(t, err) {
				assert.EqualValues(t, name, entry.Hash)
			}
		}
	}
}

// TestGenerationCacheContextClose verifies cancelling the context closes the cache and flushes its entries.
func TestGenerationCacheContextClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx, cancel := context.WithCancel(context.Background())
	generationCache, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, generationCache.Put("Token", Entry{Hash: "abc123"}))

	cancel()
	require.Eventually(t, func() bool {
		reopened, err := Open(context.Background(), path)
		if err != nil {
			return false
		}
		defer reopened.Close()
		entry, err := reopened.Get("Token")
		return err == nil && entry.Hash == "abc123"
	}, 5*time.Second, 50*time.Millisecond)
}

// TestFormatDuration verifies ages are described in the largest whole unit.
func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		duration time.Duration
		expected string
	}{
		{30 * time.Second, "30 seconds"},
		{1 * time.Minute, "1 minute"},
		{5 * time.Minute, "5 minutes"},
		{1 * time.Hour, "1 hour"},
		{3 * time.Hour, "3 hours"},
		{24 * time.Hour, "1 day"},
		{72 * time.Hour, "3 days"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}

	entry := Entry{GeneratedAt: time.Now().Add(-2 * time.Hour)}
	assert.Equal(t, "2 hours", entry.Age())
}
