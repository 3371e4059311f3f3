// Package extract materializes data sources into frames.
//
// Extractors are registered per data source type ("csv", "excel", ...) and
// looked up when a step needs a raw domain. Default dispatches on
// DataSource.Type, so callers only ever hold one Extractor.
package extract

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"

	"domainetl/internal/catalog"
	"domainetl/internal/datasource"
	"domainetl/internal/table"
)

// Extractor turns one data source into a frame named after its domain.
type Extractor interface {
	Extract(ctx context.Context, ds catalog.DataSource) (*table.Frame, error)
}

// Func adapts a plain function to Extractor.
type Func func(ctx context.Context, ds catalog.DataSource) (*table.Frame, error)

// Extract implements Extractor.
func (f Func) Extract(ctx context.Context, ds catalog.DataSource) (*table.Frame, error) {
	return f(ctx, ds)
}

var (
	mu         sync.RWMutex
	extractors = map[string]Extractor{}
)

// openSource is a test hook; it resolves a locator to a byte source.
var openSource = datasource.ForLocator

// Register installs (or replaces) the extractor for a data source type.
func Register(typ string, e Extractor) {
	mu.Lock()
	defer mu.Unlock()
	extractors[typ] = e
}

// For returns the extractor registered for typ.
func For(typ string) (Extractor, error) {
	mu.RLock()
	e, ok := extractors[typ]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("extract: no extractor registered for type %q", typ)
	}
	return e, nil
}

// Types returns the registered types, sorted.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(extractors))
	for t := range extractors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Default dispatches to the extractor registered for ds.Type.
var Default Extractor = Func(func(ctx context.Context, ds catalog.DataSource) (*table.Frame, error) {
	e, err := For(ds.Type)
	if err != nil {
		return nil, err
	}
	log.Printf("extract: %s", ds)
	f, err := e.Extract(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", ds.Domain, err)
	}
	f.Domain = ds.Domain
	return f, nil
})

func init() {
	Register("csv", Func(extractCSV))
	Register("excel", Func(extractExcel))
}

// open resolves ds.File and opens it.
func open(ctx context.Context, ds catalog.DataSource) (io.ReadCloser, error) {
	if ds.File == "" {
		return nil, fmt.Errorf("data source %q has no file", ds.Domain)
	}
	s, err := openSource(ds.File)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx)
}
