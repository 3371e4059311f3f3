package resolver

import (
	"sort"
	"strconv"

	"github.com/zeebo/xxh3"

	"domainetl/internal/catalog"
	"domainetl/internal/config"
	"domainetl/internal/etlerr"
	"domainetl/internal/step"
)

// Registry is the resolved, read-only set of steps. Indices map a key to
// positions in steps, so every query returns steps in declared order.
//
// byOutput only knows static outputs: a stage with a function and no
// declared output_domains is invisible to StepsProducing until it runs.
//
// A Registry is never mutated after Resolve and may be shared by concurrent
// readers. Every query returns a fresh slice.
type Registry struct {
	steps   []step.Spec
	rawOnly []string
	catalog *catalog.Catalog
	indexes config.IndexSpec

	byOutput   map[string][]int
	byInput    map[string][]int
	byFunction map[string][]int
}

// Steps returns every step: synthesized pass-through steps in catalog order,
// then the declared stages in declaration order.
func (r *Registry) Steps() []step.Spec {
	out := make([]step.Spec, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.Clone()
	}
	return out
}

// Len returns the number of steps.
func (r *Registry) Len() int { return len(r.steps) }

// StepsProducing returns the steps whose static outputs intersect domains.
func (r *Registry) StepsProducing(domains ...string) []step.Spec {
	return r.collect(r.byOutput, domains)
}

// StepsConsuming returns the steps that take domain as input.
func (r *Registry) StepsConsuming(domain string) []step.Spec {
	return r.collect(r.byInput, []string{domain})
}

// StepsForFunction returns the steps that apply the named function.
func (r *Registry) StepsForFunction(name string) []step.Spec {
	return r.collect(r.byFunction, []string{name})
}

// ProducerOf returns the first step producing domain, or
// ConfigError(UnknownOutputDomain).
func (r *Registry) ProducerOf(domain string) (step.Spec, error) {
	if idx := r.byOutput[domain]; len(idx) > 0 {
		return r.steps[idx[0]].Clone(), nil
	}
	return step.Spec{}, etlerr.Config(etlerr.UnknownOutputDomain, domain)
}

// OutputClosure concatenates the static outputs of every step that consumes
// one of inputDomains or applies one of functionNames, then appends
// extraOutputs verbatim. Duplicates are kept; callers dedupe if they care.
func (r *Registry) OutputClosure(inputDomains, functionNames, extraOutputs []string) []string {
	ins := toSet(inputDomains)
	fns := toSet(functionNames)

	var out []string
	for _, s := range r.steps {
		hit := s.HasFunction() && fns[s.FunctionName]
		for _, d := range s.InputDomains {
			if hit {
				break
			}
			hit = ins[d]
		}
		if hit {
			out = append(out, s.OutputDomains...)
		}
	}
	return append(out, extraOutputs...)
}

// OutputDomains returns the static output domains of all steps, first
// occurrence order.
func (r *Registry) OutputDomains() []string {
	return r.keysInOrder(func(s step.Spec) []string { return s.OutputDomains })
}

// InputDomains returns every domain some step consumes, first occurrence
// order.
func (r *Registry) InputDomains() []string {
	return r.keysInOrder(func(s step.Spec) []string { return s.InputDomains })
}

// Functions returns the distinct function names, first occurrence order.
func (r *Registry) Functions() []string {
	return r.keysInOrder(func(s step.Spec) []string {
		if !s.HasFunction() {
			return nil
		}
		return []string{s.FunctionName}
	})
}

// RawOnlyDomains returns the data source domains no declared stage consumes,
// in catalog order.
func (r *Registry) RawOnlyDomains() []string {
	out := make([]string, len(r.rawOnly))
	copy(out, r.rawOnly)
	return out
}

// DataSource looks a data source up by domain.
func (r *Registry) DataSource(domain string) (catalog.DataSource, error) {
	return r.catalog.Lookup(domain)
}

// Catalog returns the parsed data sources.
func (r *Registry) Catalog() *catalog.Catalog { return r.catalog }

// Indexes returns the index columns for domain: the default bucket followed
// by the domain's own entries.
func (r *Registry) Indexes(domain string) []string { return r.indexes.For(domain) }

// Fingerprint hashes the step list and indices. Two registries resolved from
// the same document have the same fingerprint.
func (r *Registry) Fingerprint() uint64 {
	h := xxh3.New()
	for _, s := range r.steps {
		_, _ = h.WriteString(s.String())
		_, _ = h.WriteString("\n")
	}
	for _, idx := range []map[string][]int{r.byOutput, r.byInput, r.byFunction} {
		keys := make([]string, 0, len(idx))
		for k := range idx {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = h.WriteString(k)
			for _, i := range idx[k] {
				_, _ = h.WriteString(" " + strconv.Itoa(i))
			}
			_, _ = h.WriteString("\n")
		}
		_, _ = h.WriteString("--\n")
	}
	return h.Sum64()
}

func (r *Registry) collect(index map[string][]int, keys []string) []step.Spec {
	var pos []int
	seen := make(map[int]bool)
	for _, k := range keys {
		for _, i := range index[k] {
			if !seen[i] {
				seen[i] = true
				pos = append(pos, i)
			}
		}
	}
	sort.Ints(pos)
	out := make([]step.Spec, 0, len(pos))
	for _, i := range pos {
		out = append(out, r.steps[i].Clone())
	}
	return out
}

func (r *Registry) keysInOrder(keys func(step.Spec) []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range r.steps {
		for _, k := range keys(s) {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

func toSet(list []string) map[string]bool {
	m := make(map[string]bool, len(list))
	for _, v := range list {
		m[v] = true
	}
	return m
}
