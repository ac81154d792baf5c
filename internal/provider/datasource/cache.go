package datasource

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache provides simple file-based caching for upstream responses. The
// requested key is stored inside each entry and verified on read, so a
// filename collision or stale payload is detected rather than assumed
// away.
type Cache struct {
	cacheDir string
	ttl      time.Duration
	mu       sync.RWMutex
}

// CacheEntry represents a cached item
type CacheEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCache creates a new cache instance
func NewCache(cacheDir string, ttl time.Duration) *Cache {
	if cacheDir == "" {
		cacheDir = "cache/provider"
	}

	os.MkdirAll(cacheDir, 0755)

	return &Cache{
		cacheDir: cacheDir,
		ttl:      ttl,
	}
}

// Get retrieves an item from cache. Entries whose stored key does not
// match the requested key, or whose stored timestamp is older than the
// TTL, are discarded.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cacheFile := c.getCacheFilePath(key)

	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Key != key {
		return nil, false
	}
	if time.Since(entry.Timestamp) > c.ttl {
		os.Remove(cacheFile)
		return nil, false
	}

	return entry.Data, true
}

// Set stores an item in cache
func (c *Cache) Set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := CacheEntry{
		Key:       key,
		Data:      data,
		Timestamp: time.Now(),
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	cacheFile := c.getCacheFilePath(key)
	return os.WriteFile(cacheFile, entryData, 0644)
}

// Delete removes an item from cache
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return os.Remove(c.getCacheFilePath(key))
}

// Clear removes all cache entries
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return os.RemoveAll(c.cacheDir)
}

func (c *Cache) getCacheFilePath(key string) string {
	hash := md5.Sum([]byte(key))
	filename := fmt.Sprintf("%x.json", hash)
	return filepath.Join(c.cacheDir, filename)
}

// GetOrFetch retrieves from cache or fetches using provided function
func (c *Cache) GetOrFetch(key string, fetchFn func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}

	data, err := fetchFn()
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore errors)
	c.Set(key, data)

	return data, nil
}

// MakeKey creates a cache key from parts
func MakeKey(parts ...string) string {
	return strings.Join(parts, "|")
}

// KeyForTickers creates a content-addressed key for a ticker set on one
// date: the sha256 of the sorted, deduplicated list plus the date.
func KeyForTickers(date string, tickers []string) string {
	dedup := make(map[string]bool, len(tickers))
	sorted := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if !dedup[t] {
			dedup[t] = true
			sorted = append(sorted, t)
		}
	}
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",") + "|" + date))
	return fmt.Sprintf("tickers|%s|%x", date, sum)
}
