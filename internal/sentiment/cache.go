package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsSentinel/internal/model"
)

// cacheFile is the on-disk layout of the cache.
type cacheFile struct {
	UpdatedAt time.Time                         `json:"updated_at"`
	Entries   map[string]model.ArticleSentiment `json:"entries"`
}

// Cache persists sentiments in a JSON file so reruns over the same articles
// do not call the model again. Safe for concurrent use.
type Cache struct {
	path    string
	mu      sync.Mutex
	entries map[string]model.ArticleSentiment
	dirty   bool
}

// LoadCache reads the cache file. A missing file yields an empty cache.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{path: path, entries: map[string]model.ArticleSentiment{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read sentiment cache: %w", err)
	}
	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode sentiment cache: %w", err)
	}
	if f.Entries != nil {
		c.entries = f.Entries
	}
	return c, nil
}

// Key identifies an article's analysis by a given extractor. Article ids are
// positional and change between runs, so the key hashes stable content.
func Key(extractor string, a model.Article) string {
	name := extractor + "\x00" + a.Ticker + "\x00" + a.URL + "\x00" + a.Title + "\x00" + a.PublishedAt
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// Get returns the cached sentiment for key.
func (c *Cache) Get(key string) (model.ArticleSentiment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	return s, ok
}

// Put stores s under key.
func (c *Cache) Put(key string, s model.ArticleSentiment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = s
	c.dirty = true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save writes the cache file if anything changed since the last save.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	data, err := json.MarshalIndent(cacheFile{UpdatedAt: time.Now(), Entries: c.entries}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write sentiment cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("write sentiment cache: %w", err)
	}
	c.dirty = false
	return nil
}

// CachedExtractor serves repeat articles from a Cache. Fallback results are
// never cached.
type CachedExtractor struct {
	Inner Extractor
	Cache *Cache
}

func (c *CachedExtractor) Name() string { return c.Inner.Name() }

func (c *CachedExtractor) Analyze(ctx context.Context, a model.Article) (model.ArticleSentiment, error) {
	key := Key(c.Inner.Name(), a)
	if s, ok := c.Cache.Get(key); ok {
		s.ArticleID = a.ID
		return s, nil
	}
	s, err := c.Inner.Analyze(ctx, a)
	if err != nil {
		return s, err
	}
	if !IsFallback(s) {
		c.Cache.Put(key, s)
	}
	return s, nil
}
