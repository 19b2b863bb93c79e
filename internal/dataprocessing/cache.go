package dataprocessing

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"loteriadash/internal/infrastructure"
	"loteriadash/pkg/contracts/domain"
)

// TableLoader produces a table and its load report
type TableLoader interface {
	Load(ctx context.Context) (*domain.Table, domain.LoadReport, error)
}

// staleChecker is implemented by loaders that can report the source mtime
type staleChecker interface {
	SourceModTime() (time.Time, error)
}

// SourceModTime returns the modification time of the resolved dataset file
func (l *Loader) SourceModTime() (time.Time, error) {
	info, err := l.Resolve()
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime, nil
}

// Cache memoizes the loaded table. It is owned by its caller; there is no
// package-level instance. Concurrent misses share one load.
type Cache struct {
	loader     TableLoader
	checkStale bool
	metrics    *infrastructure.BusinessMetrics

	mu     sync.RWMutex
	table  *domain.Table
	report domain.LoadReport
	gen    uint64 // bumped by Invalidate; loads from an older generation are discarded
	group  singleflight.Group
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithStalenessCheck reloads when the source file changed since the last load
func WithStalenessCheck(enabled bool) CacheOption {
	return func(c *Cache) { c.checkStale = enabled }
}

// WithCacheMetrics records hits and misses
func WithCacheMetrics(m *infrastructure.BusinessMetrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

// NewCache wraps loader
func NewCache(loader TableLoader, opts ...CacheOption) *Cache {
	c := &Cache{loader: loader}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached table, loading it on first use or when stale
func (c *Cache) Get(ctx context.Context) (*domain.Table, error) {
	c.mu.RLock()
	table, report := c.table, c.report
	c.mu.RUnlock()

	if table != nil && !c.stale(report) {
		infrastructure.RecordCacheAccess(ctx, c.metrics, true)
		return table, nil
	}
	infrastructure.RecordCacheAccess(ctx, c.metrics, false)
	return c.load(ctx)
}

// Refresh forces a reload and returns the new table. On failure the
// previous table is dropped so callers never see data for a broken source.
func (c *Cache) Refresh(ctx context.Context) (*domain.Table, error) {
	c.Invalidate()
	return c.load(ctx)
}

// Invalidate discards the cached table. Loads already in flight finish for
// their callers but neither satisfy later calls nor fill the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.table = nil
	c.report = domain.LoadReport{}
	c.mu.Unlock()
}

// Report returns the report of the last successful load
func (c *Cache) Report() (domain.LoadReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.report, c.table != nil
}

// LoadedAt returns when the cached table was loaded, zero when empty
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.table == nil {
		return time.Time{}
	}
	return c.report.LoadedAt
}

func (c *Cache) stale(report domain.LoadReport) bool {
	if !c.checkStale {
		return false
	}
	sc, ok := c.loader.(staleChecker)
	if !ok {
		return false
	}
	mod, err := sc.SourceModTime()
	if err != nil {
		return true
	}
	return !mod.Equal(report.SourceModTime)
}

type loadResult struct {
	table  *domain.Table
	report domain.LoadReport
}

func (c *Cache) load(ctx context.Context) (*domain.Table, error) {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		table, report, err := c.loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.table, c.report = table, report
		}
		c.mu.Unlock()
		return loadResult{table: table, report: report}, nil
	})
	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.table = nil
			c.report = domain.LoadReport{}
		}
		c.mu.Unlock()
		return nil, err
	}
	return v.(loadResult).table, nil
}
