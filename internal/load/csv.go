package load

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"domainetl/internal/table"
)

// CSV writes each domain to <Dir>/<domain>.csv, header first. The directory is
// created on first use and existing files are replaced.
type CSV struct {
	Dir string
}

// Path returns the file a domain is written to.
func (c *CSV) Path(domain string) string {
	return filepath.Join(c.Dir, domain+".csv")
}

// Load implements Loader.
func (c *CSV) Load(ctx context.Context, f *table.Frame, _ Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := c.Path(f.Domain)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(out)
	if err := w.Write(f.Columns); err != nil {
		_ = out.Close()
		return fmt.Errorf("write header %s: %w", path, err)
	}
	if err := w.WriteAll(f.Rows); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	log.Printf("loader: wrote %s rows=%d", path, f.Len())
	return nil
}

// Close implements Loader.
func (c *CSV) Close() error { return nil }
