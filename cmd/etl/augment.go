package main

import (
	"domainetl/internal/transform"
	"domainetl/internal/transform/builtin"
)

// functions returns the transform set available to pipeline stages: the
// general-purpose builtins plus the project's augment functions.
func functions() *transform.Registry {
	r := transform.NewRegistry()
	builtin.Register(r)
	registerAugment(r)
	return r
}

// registerAugment installs the breakdown/value splits the sample pipeline
// declares in config/etl_config.yml.
func registerAugment(r *transform.Registry) {
	day := builtin.Eq("Day")
	ytd := builtin.Eq("YTD")

	r.Register("out_lines1", builtin.Filters(
		builtin.FilterSpec{Input: "lines1", Output: "aa", Column: "breakdown", Keep: day},
	))
	r.Register("out_lines2", builtin.Filters(
		builtin.FilterSpec{Input: "lines1", Output: "aaa", Column: "breakdown", Keep: ytd},
		builtin.FilterSpec{Input: "lines2", Output: "bbb", Column: "breakdown", Keep: ytd},
	))
	r.Register("out_lines3", builtin.Filters(
		builtin.FilterSpec{Input: "lines1", Output: "zzzz", Column: "breakdown", Keep: ytd},
	))
	r.Register("out_lines4", builtin.Filters(
		builtin.FilterSpec{Input: "lines2", Output: "ygtd", Column: "value", Keep: builtin.NumGE(9)},
	))

	// lines1 rows carrying a day and a value, one per (day, breakdown).
	r.Register("clean_lines1", builtin.Chain(
		builtin.Normalize,
		builtin.Require{Fields: []string{"day", "value"}}.Func(),
		builtin.DeDup{Keys: []string{"day", "breakdown"}, Policy: "most-complete"}.Func(),
		builtin.Rename("lines1", "lines1_clean"),
	))
}
