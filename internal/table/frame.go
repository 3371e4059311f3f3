// Package table provides the in-memory tabular value passed between the
// extract, transform and load phases.
//
// A Frame is deliberately simple: an ordered header plus rows of strings.
// Extractors produce text; transforms and loaders decide how to interpret it.
package table

import (
	"fmt"
)

// Frame is one materialized domain.
type Frame struct {
	Domain  string
	Columns []string
	Rows    [][]string
}

// New returns an empty frame with a copy of columns.
func New(domain string, columns []string) *Frame {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Frame{Domain: domain, Columns: cols}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Column returns the index of name, or -1.
func (f *Frame) Column(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row i for column name. Missing columns and short
// rows yield "".
func (f *Frame) Value(i int, name string) string {
	c := f.Column(name)
	if c < 0 || i < 0 || i >= len(f.Rows) || c >= len(f.Rows[i]) {
		return ""
	}
	return f.Rows[i][c]
}

// Append adds a row. The row must have one cell per column.
func (f *Frame) Append(row []string) error {
	if len(row) != len(f.Columns) {
		return fmt.Errorf("table %s: row has %d cells, want %d", f.Domain, len(row), len(f.Columns))
	}
	f.Rows = append(f.Rows, row)
	return nil
}

// Filter returns a new frame with the rows for which keep returns true. Rows
// are shared with f, not copied.
func (f *Frame) Filter(keep func(row []string) bool) *Frame {
	out := New(f.Domain, f.Columns)
	for _, r := range f.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Clone returns a deep copy of f, optionally renamed.
func (f *Frame) Clone(domain string) *Frame {
	if domain == "" {
		domain = f.Domain
	}
	out := New(domain, f.Columns)
	out.Rows = make([][]string, len(f.Rows))
	for i, r := range f.Rows {
		row := make([]string, len(r))
		copy(row, r)
		out.Rows[i] = row
	}
	return out
}

// Chunks splits the rows into consecutive slices of at most n rows. n <= 0
// yields a single chunk with every row.
func (f *Frame) Chunks(n int) [][][]string {
	if len(f.Rows) == 0 {
		return nil
	}
	if n <= 0 || n >= len(f.Rows) {
		return [][][]string{f.Rows}
	}
	out := make([][][]string, 0, (len(f.Rows)+n-1)/n)
	for start := 0; start < len(f.Rows); start += n {
		end := start + n
		if end > len(f.Rows) {
			end = len(f.Rows)
		}
		out = append(out, f.Rows[start:end])
	}
	return out
}
