// Package load writes materialized domains to their destination: CSV files
// (one <domain>.csv per domain) or a database table per domain through the
// storage backends.
package load

import (
	"context"
	"fmt"

	"domainetl/internal/config"
	"domainetl/internal/storage"
	"domainetl/internal/table"
)

// DefaultBatchSize is the insert batch size when a step sets no chunk size.
const DefaultBatchSize = 1000

// Options tune a single Load call.
type Options struct {
	// ChunkSize is the number of rows per insert batch. <= 0 means
	// DefaultBatchSize. The CSV loader ignores it.
	ChunkSize int

	// Indexes lists columns to index after loading. The CSV loader ignores it.
	Indexes []string
}

// Loader persists one frame under its domain name.
type Loader interface {
	Load(ctx context.Context, f *table.Frame, opts Options) error
	Close() error
}

// New returns the loader selected by decl.Kind ("csv" when empty). Database
// kinds must have been registered, usually by importing storage/all.
func New(ctx context.Context, decl config.StorageDecl) (Loader, error) {
	kind := decl.EffectiveKind()
	if kind == "csv" {
		dir := decl.Dir
		if dir == "" {
			dir = config.DefaultOutputDir
		}
		return &CSV{Dir: dir}, nil
	}

	d, err := storage.DialectFor(kind)
	if err != nil {
		return nil, err
	}
	repo, err := storage.New(ctx, storage.Config{Kind: kind, DSN: decl.DSN})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", kind, err)
	}
	return NewDB(repo, d, decl.Schema), nil
}
