// Package resolver turns a parsed config document into the ordered list of
// ETL steps and the lookup indices the runner queries.
//
// Domains form a producer/consumer graph: data sources produce raw domains,
// pipeline stages consume domains and produce new ones. A data source domain
// that no stage consumes gets a synthesized pass-through step so it is still
// extracted and loaded exactly once.
package resolver

import (
	"domainetl/internal/catalog"
	"domainetl/internal/config"
	"domainetl/internal/etlerr"
	"domainetl/internal/step"
)

// FunctionSet is the part of a transform registry the resolver needs.
type FunctionSet interface {
	Has(name string) bool
}

// Option configures Resolve.
type Option func(*options)

type options struct {
	dataSourceDir string
	functions     FunctionSet
}

// WithDataSourceDir overrides the directory relative data source files are
// joined onto. It takes precedence over the document's data_source_dir.
func WithDataSourceDir(dir string) Option {
	return func(o *options) { o.dataSourceDir = dir }
}

// WithFunctions makes Resolve reject any stage whose function name is not
// in fs with ConfigError(UnknownFunction).
func WithFunctions(fs FunctionSet) Option {
	return func(o *options) { o.functions = fs }
}

// Resolve builds a Registry from doc. It never returns a partial registry:
// any configuration problem aborts with a *etlerr.ConfigError.
func Resolve(doc *config.Document, opts ...Option) (*Registry, error) {
	if doc == nil || doc.DataSources == nil {
		return nil, etlerr.Config(etlerr.MissingDataSources, "")
	}

	o := options{dataSourceDir: doc.DataSourceDir}
	if o.dataSourceDir == "" {
		o.dataSourceDir = config.DefaultDataSourceDir
	}
	for _, opt := range opts {
		opt(&o)
	}

	cat, err := catalog.Parse(doc.DataSources, o.dataSourceDir)
	if err != nil {
		return nil, err
	}

	declared := make([]step.Spec, 0, len(doc.Pipeline))
	pipelineInputs := make(map[string]struct{})
	for _, d := range doc.Pipeline {
		s, err := step.FromDecl(d)
		if err != nil {
			return nil, err
		}
		if s.HasFunction() && o.functions != nil && !o.functions.Has(s.FunctionName) {
			return nil, etlerr.Config(etlerr.UnknownFunction, s.FunctionName)
		}
		for _, in := range s.InputDomains {
			pipelineInputs[in] = struct{}{}
		}
		declared = append(declared, s)
	}

	var rawOnly []string
	steps := make([]step.Spec, 0, cat.Len()+len(declared))
	for _, ds := range cat.All() {
		if _, consumed := pipelineInputs[ds.Domain]; consumed {
			continue
		}
		rawOnly = append(rawOnly, ds.Domain)
		steps = append(steps, step.PassThrough(ds.Domain, ds.Load))
	}
	steps = append(steps, declared...)

	r := &Registry{
		steps:      steps,
		rawOnly:    rawOnly,
		catalog:    cat,
		indexes:    doc.Indexes.Clone(),
		byOutput:   make(map[string][]int),
		byInput:    make(map[string][]int),
		byFunction: make(map[string][]int),
	}
	for i, s := range steps {
		for _, d := range s.OutputDomains {
			r.byOutput[d] = appendOnce(r.byOutput[d], i)
		}
		for _, d := range s.InputDomains {
			r.byInput[d] = appendOnce(r.byInput[d], i)
		}
		if s.HasFunction() {
			r.byFunction[s.FunctionName] = append(r.byFunction[s.FunctionName], i)
		}
	}
	return r, nil
}

// appendOnce keeps a step from being listed twice under one key when it
// names the same domain twice.
func appendOnce(idx []int, i int) []int {
	if n := len(idx); n > 0 && idx[n-1] == i {
		return idx
	}
	return append(idx, i)
}
