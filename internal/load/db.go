package load

import (
	"context"
	"fmt"
	"log"

	"domainetl/internal/storage"
	"domainetl/internal/table"
)

// DB loads each domain into a table of the same name, optionally qualified
// by Schema. The table is dropped and recreated with every column typed as
// the dialect's text type, so a rerun replaces the previous contents.
type DB struct {
	repo    storage.Repository
	dialect storage.Dialect
	schema  string
}

// NewDB returns a loader writing through repo. DB owns repo and closes it.
func NewDB(repo storage.Repository, d storage.Dialect, schema string) *DB {
	return &DB{repo: repo, dialect: d, schema: schema}
}

// Table returns the (possibly schema-qualified) table name for domain.
func (l *DB) Table(domain string) string {
	if l.schema == "" {
		return domain
	}
	return l.schema + "." + domain
}

// Load implements Loader.
func (l *DB) Load(ctx context.Context, f *table.Frame, opts Options) error {
	tbl := l.Table(f.Domain)
	if len(f.Columns) == 0 {
		log.Printf("loader: %s has no columns; nothing to load", f.Domain)
		return nil
	}
	create, err := l.dialect.CreateTable(tbl, f.Columns)
	if err != nil {
		return err
	}
	if err := l.repo.Exec(ctx, l.dialect.DropTable(tbl)); err != nil {
		return fmt.Errorf("drop %s: %w", tbl, err)
	}
	if err := l.repo.Exec(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", tbl, err)
	}

	batch := opts.ChunkSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	n, err := storage.LoadBatches(ctx, f.Columns, storage.StreamRows(ctx, f.Rows, len(f.Columns)), batch,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return l.repo.CopyFrom(ctx, tbl, columns, rows)
		})
	if err != nil {
		return fmt.Errorf("load %s: %w", tbl, err)
	}
	log.Printf("loader: %s rows=%d", tbl, n)

	return l.createIndexes(ctx, f, tbl, opts.Indexes)
}

// createIndexes adds one single-column index per configured column. Columns
// the frame does not have are skipped with a log line.
func (l *DB) createIndexes(ctx context.Context, f *table.Frame, tbl string, cols []string) error {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c] {
			continue
		}
		seen[c] = true
		if f.Column(c) < 0 {
			log.Printf("loader: %s has no column %q; index skipped", tbl, c)
			continue
		}
		name := "ix_" + table.NormalizeName(f.Domain) + "_" + table.NormalizeName(c)
		if err := l.repo.Exec(ctx, l.dialect.CreateIndex(tbl, name, []string{c})); err != nil {
			return fmt.Errorf("index %s(%s): %w", tbl, c, err)
		}
	}
	return nil
}

// Close implements Loader.
func (l *DB) Close() error {
	l.repo.Close()
	return nil
}
