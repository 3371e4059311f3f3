package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"domainetl/internal/table"
	"domainetl/internal/transform"
)

// Predicate decides whether a cell value keeps its row.
type Predicate func(v string) bool

// Eq matches the exact value.
func Eq(want string) Predicate { return func(v string) bool { return v == want } }

// NumGE matches numeric cells >= min. Non-numeric cells never match.
func NumGE(min float64) Predicate {
	return func(v string) bool {
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil && n >= min
	}
}

// FilterSpec routes the rows of Input whose Column satisfies Keep to Output.
type FilterSpec struct {
	Input  string
	Output string
	Column string
	Keep   Predicate
}

// Filters builds a transform that applies every spec and returns one frame
// per spec, keyed by Output. A spec whose input or column is missing fails
// the transform.
func Filters(specs ...FilterSpec) transform.Func {
	return func(ctx context.Context, in map[string]*table.Frame) (map[string]*table.Frame, error) {
		out := make(map[string]*table.Frame, len(specs))
		for _, s := range specs {
			f, ok := in[s.Input]
			if !ok {
				return nil, fmt.Errorf("filter %s: input domain %q not provided", s.Output, s.Input)
			}
			col := f.Column(s.Column)
			if col < 0 {
				return nil, fmt.Errorf("filter %s: domain %q has no column %q", s.Output, s.Input, s.Column)
			}
			res := f.Filter(func(row []string) bool { return col < len(row) && s.Keep(row[col]) })
			res.Domain = s.Output
			out[s.Output] = res
		}
		return out, nil
	}
}

// Rename moves the frame keyed from to the key to, leaving other frames
// untouched. A missing from is an error.
func Rename(from, to string) transform.Func {
	return func(ctx context.Context, in map[string]*table.Frame) (map[string]*table.Frame, error) {
		f, ok := in[from]
		if !ok {
			return nil, fmt.Errorf("rename: domain %q not provided", from)
		}
		out := make(map[string]*table.Frame, len(in))
		for d, g := range in {
			if d != from {
				out[d] = g
			}
		}
		out[to] = f.Clone(to)
		return out, nil
	}
}

// Register installs the general-purpose builtins into r.
func Register(r *transform.Registry) {
	r.Register("normalize", Normalize)
	r.Register("dedup", DeDup{Policy: "keep-first"}.Func())
}
