package builtin

import (
	"context"
	"fmt"

	"domainetl/internal/table"
	"domainetl/internal/transform"
)

// Require removes any row missing a value for one of Fields.
type Require struct {
	Fields []string
}

// Apply returns a new frame holding only the rows whose required cells are
// present and non-empty. A field the frame lacks is an error.
func (r Require) Apply(f *table.Frame) (*table.Frame, error) {
	idx := make([]int, 0, len(r.Fields))
	for _, name := range r.Fields {
		i := f.Column(name)
		if i < 0 {
			return nil, fmt.Errorf("unknown required column %q", name)
		}
		idx = append(idx, i)
	}
	return f.Filter(func(row []string) bool {
		for _, i := range idx {
			if i >= len(row) || row[i] == "" {
				return false
			}
		}
		return true
	}), nil
}

// Func applies r to every input frame.
func (r Require) Func() transform.Func {
	return func(ctx context.Context, in map[string]*table.Frame) (map[string]*table.Frame, error) {
		out := make(map[string]*table.Frame, len(in))
		for domain, f := range in {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := r.Apply(f)
			if err != nil {
				return nil, fmt.Errorf("require %s: %w", domain, err)
			}
			out[domain] = res
		}
		return out, nil
	}
}

// Chain runs fns in order, feeding each one the previous outputs.
func Chain(fns ...transform.Func) transform.Func {
	return func(ctx context.Context, in map[string]*table.Frame) (map[string]*table.Frame, error) {
		cur := in
		for _, fn := range fns {
			next, err := fn(ctx, cur)
			if err != nil {
				return nil, err
			}
			cur = next
		}
		return cur, nil
	}
}
