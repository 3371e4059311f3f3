package extract

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"domainetl/internal/catalog"
	"domainetl/internal/table"
)

// Cached extracts each domain at most once per run. Concurrent callers for
// the same domain share a single extraction, and every caller gets its own
// copy of the frame so transforms cannot corrupt the cache.
type Cached struct {
	next  Extractor
	group singleflight.Group

	mu     sync.Mutex
	frames map[string]*table.Frame
}

// NewCached wraps next.
func NewCached(next Extractor) *Cached {
	return &Cached{next: next, frames: make(map[string]*table.Frame)}
}

// Extract implements Extractor.
func (c *Cached) Extract(ctx context.Context, ds catalog.DataSource) (*table.Frame, error) {
	c.mu.Lock()
	f, ok := c.frames[ds.Domain]
	c.mu.Unlock()
	if ok {
		return f.Clone(""), nil
	}

	v, err, _ := c.group.Do(ds.Domain, func() (any, error) {
		f, err := c.next.Extract(ctx, ds)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.frames[ds.Domain] = f
		c.mu.Unlock()
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*table.Frame).Clone(""), nil
}

// Forget drops the cached frame for domain.
func (c *Cached) Forget(domain string) {
	c.mu.Lock()
	delete(c.frames, domain)
	c.mu.Unlock()
}

// Len returns the number of cached domains.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}
