// Package builtin contains reusable transforms.
//
// DeDup collapses duplicate rows by a key and chooses a winner according to
// a policy:
//
//   - "keep-first"   : keep the earliest occurrence
//   - "keep-last"    : keep the latest occurrence (default)
//   - "most-complete": keep the row with the most non-empty cells;
//     ties break by "keep-last"
//
// Keys are hashed with xxh3 over the key cells (all columns when Keys is
// empty). Rows missing a key column cannot be keyed and pass through after
// the winners, in input order.
package builtin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"domainetl/internal/table"
	"domainetl/internal/transform"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the columns that form the business key. Empty means all.
	Keys []string

	// Policy is "keep-first", "keep-last" (default) or "most-complete".
	Policy string

	// PreferFields weigh more in "most-complete" scoring when non-empty.
	PreferFields []string
}

// Func returns d as a transform applied to every input frame; outputs keep
// the input domain names.
func (d DeDup) Func() transform.Func {
	return func(ctx context.Context, in map[string]*table.Frame) (map[string]*table.Frame, error) {
		out := make(map[string]*table.Frame, len(in))
		for domain, f := range in {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := d.Apply(f)
			if err != nil {
				return nil, fmt.Errorf("dedup %s: %w", domain, err)
			}
			out[domain] = res
		}
		return out, nil
	}
}

// Apply returns a new frame with only the winning row per key.
func (d DeDup) Apply(f *table.Frame) (*table.Frame, error) {
	out := table.New(f.Domain, f.Columns)
	if f.Len() == 0 {
		return out, nil
	}

	keyIdx := make([]int, 0, len(d.Keys))
	for _, k := range d.Keys {
		i := f.Column(k)
		if i < 0 {
			return nil, fmt.Errorf("unknown key column %q", k)
		}
		keyIdx = append(keyIdx, i)
	}
	if len(keyIdx) == 0 {
		for i := range f.Columns {
			keyIdx = append(keyIdx, i)
		}
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}
	switch policy {
	case "keep-first", "keep-last", "most-complete":
	default:
		return nil, fmt.Errorf("unknown policy %q", d.Policy)
	}

	prefer := make(map[int]bool, len(d.PreferFields))
	for _, p := range d.PreferFields {
		if i := f.Column(p); i >= 0 {
			prefer[i] = true
		}
	}

	type slot struct {
		index int
		score int
	}
	winners := make(map[uint64]slot, f.Len())
	var loose []int

	for i, row := range f.Rows {
		key, ok := rowKey(row, keyIdx)
		if !ok {
			loose = append(loose, i)
			continue
		}
		prev, exists := winners[key]
		switch policy {
		case "keep-first":
			if !exists {
				winners[key] = slot{index: i}
			}
		case "most-complete":
			s := slot{index: i, score: score(row, prefer)}
			if !exists || s.score >= prev.score {
				winners[key] = s
			}
		default:
			winners[key] = slot{index: i}
		}
	}

	keep := make([]int, 0, len(winners))
	for _, s := range winners {
		keep = append(keep, s.index)
	}
	sort.Ints(keep)
	for _, i := range append(keep, loose...) {
		out.Rows = append(out.Rows, f.Rows[i])
	}
	return out, nil
}

// rowKey hashes the key cells with a unit separator between them.
func rowKey(row []string, idx []int) (uint64, bool) {
	h := xxh3.New()
	for n, i := range idx {
		if i >= len(row) {
			return 0, false
		}
		if n > 0 {
			_, _ = h.WriteString("\x1f")
		}
		_, _ = h.WriteString(row[i])
	}
	return h.Sum64(), true
}

// score counts non-empty cells; preferred columns add a bonus.
func score(row []string, prefer map[int]bool) int {
	base, bonus := 0, 0
	for i, v := range row {
		if v == "" {
			continue
		}
		base++
		if prefer[i] {
			bonus++
		}
	}
	return base*10 + bonus
}
