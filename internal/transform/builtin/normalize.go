package builtin

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"domainetl/internal/table"
)

// cellReplacer maps NBSP, and NBSP read back as Latin-1, to a plain space.
var cellReplacer = strings.NewReplacer("\u00c2\u00a0", " ", "\u00a0", " ")

// Normalize returns copies of every input frame with each cell NFC-normalized,
// non-breaking spaces replaced and surrounding space trimmed.
func Normalize(ctx context.Context, in map[string]*table.Frame) (map[string]*table.Frame, error) {
	out := make(map[string]*table.Frame, len(in))
	for domain, f := range in {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := f.Clone(domain)
		for _, row := range c.Rows {
			for i, v := range row {
				row[i] = NormalizeCell(v)
			}
		}
		out[domain] = c
	}
	return out, nil
}

// NormalizeCell applies the Normalize rules to a single value.
func NormalizeCell(v string) string {
	return strings.TrimSpace(norm.NFC.String(cellReplacer.Replace(v)))
}
