package extract

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"domainetl/internal/catalog"
	"domainetl/internal/config"
	"domainetl/internal/table"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps per-row skip logs for one file.
const skipLogLimit = 400

func extractCSV(ctx context.Context, ds catalog.DataSource) (*table.Frame, error) {
	rc, err := open(ctx, ds)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadCSV(ctx, ds.Domain, rc, ds.Extras)
}

// ReadCSV parses CSV from r into a frame.
//
// Options:
//   - comma (or sep): field delimiter, default ','
//   - has_header: first row names the columns, default true
//   - expected_fields: column count when there is no header (col_0..col_N)
//   - header_map: source header → column name, applied before normalization
//   - normalize_headers: snake_case headers with diacritics folded
//   - trim_space: trim cell values, default true
//   - lazy_quotes: tolerate bare quotes
//
// Rows that fail to parse or have the wrong width are skipped and logged;
// the first skipLogLimit skips are logged individually.
func ReadCSV(ctx context.Context, domain string, r io.Reader, opts config.Options) (*table.Frame, error) {
	cr := csv.NewReader(bufio.NewReaderSize(r, 64*1024))
	cr.Comma = opts.Rune("comma", opts.Rune("sep", ','))
	cr.LazyQuotes = opts.Bool("lazy_quotes", false)
	// Width is enforced after reading so bad rows are skipped, not fatal.
	cr.FieldsPerRecord = -1

	trim := opts.Bool("trim_space", true)

	var columns []string
	if opts.Bool("has_header", true) {
		h, err := cr.Read()
		if err != nil {
			return nil, fmt.Errorf("read csv header: %w", err)
		}
		columns = normalizeHeaders(h, opts.StringMap("header_map"), opts.Bool("normalize_headers", false))
	} else if n := opts.Int("expected_fields", 0); n > 0 {
		columns = syntheticColumns(n)
	}

	f := table.New(domain, columns)
	skipped := 0
	skip := func(line int, err error) {
		if skipped < skipLogLimit {
			log.Printf("extract: %s: skipping row %d: %v", domain, line, err)
		}
		skipped++
	}

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			skip(line, err)
			continue
		}
		if len(f.Columns) == 0 {
			// Headerless file with no expected width: the first row decides.
			f.Columns = syntheticColumns(len(rec))
		}
		if len(rec) != len(f.Columns) {
			skip(line, fmt.Errorf("incorrect number of fields: expected %d, got %d", len(f.Columns), len(rec)))
			continue
		}
		row := make([]string, len(rec))
		for i, v := range rec {
			if trim {
				v = strings.TrimSpace(v)
			}
			row[i] = v
		}
		f.Rows = append(f.Rows, row)
	}
	if skipped > 0 {
		log.Printf("extract: %s: skipped %d rows", domain, skipped)
	}
	return f, nil
}

// normalizeHeaders trims headers, strips a BOM from the first cell, applies
// headerMap and, when asked, snake_cases the result.
func normalizeHeaders(h []string, headerMap map[string]string, normalize bool) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if m, ok := headerMap[c]; ok && m != "" {
			res[i] = m
			continue
		}
		if normalize {
			c = table.NormalizeName(c)
		}
		if c == "" {
			c = fmt.Sprintf("col_%d", i)
		}
		res[i] = c
	}
	return res
}

func syntheticColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = fmt.Sprintf("col_%d", i)
	}
	return cols
}
