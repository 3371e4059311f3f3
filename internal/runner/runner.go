// Package runner drives a resolved pipeline: for every step, in declared
// order, it materializes the step's inputs, applies its function and hands
// the outputs to a loader.
//
// Inputs produced by an earlier step of the same run are reused; anything
// else is extracted from the data source catalog. A failing step aborts the
// run.
package runner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"domainetl/internal/extract"
	"domainetl/internal/load"
	"domainetl/internal/metrics"
	"domainetl/internal/resolver"
	"domainetl/internal/step"
	"domainetl/internal/table"
)

// Transformer applies a named function to a step's inputs. An empty name
// must return the inputs unchanged. *transform.Registry satisfies it.
type Transformer interface {
	Apply(ctx context.Context, name string, in map[string]*table.Frame) (map[string]*table.Frame, error)
}

// Runner executes the steps of a Registry.
type Runner struct {
	Registry *resolver.Registry

	// Extractor reads raw domains. Nil means a per-run extract.Cached over
	// extract.Default.
	Extractor extract.Extractor

	// Functions resolves function names. Required when any step has one.
	Functions Transformer

	// Loader receives every output of a step whose Load flag is set. Nil
	// disables loading.
	Loader load.Loader

	// Job labels logs and metrics. Empty means "etl".
	Job string
}

// MaterializedStep pairs a step with the frames of its inputs, keyed by
// domain, ready to be transformed.
type MaterializedStep struct {
	Spec   step.Spec
	Inputs map[string]*table.Frame
}

// Summary describes a finished run.
type Summary struct {
	RunID string
	Steps int
	// Loaded lists loaded domains in load order.
	Loaded []string
	// Rows counts the rows loaded per domain.
	Rows map[string]int
}

// Run executes every step of the registry.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	return r.run(ctx, r.Registry.Steps())
}

// RunFor executes only the steps needed to produce domains: their producers
// and, transitively, the producers of those steps' inputs. Steps keep their
// declared order. Every domain must be a static output of some step.
func (r *Runner) RunFor(ctx context.Context, domains ...string) (*Summary, error) {
	steps, err := r.Plan(domains...)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, steps)
}

// Plan returns the steps RunFor would execute for domains. No domains means
// every step.
func (r *Runner) Plan(domains ...string) ([]step.Spec, error) {
	if len(domains) == 0 {
		return r.Registry.Steps(), nil
	}
	needed := make(map[string]bool, len(domains))
	for _, d := range domains {
		if _, err := r.Registry.ProducerOf(d); err != nil {
			return nil, err
		}
		needed[d] = true
	}

	all := r.Registry.Steps()
	keep := make([]bool, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		for _, o := range all[i].OutputDomains {
			if needed[o] {
				keep[i] = true
				break
			}
		}
		if keep[i] {
			for _, in := range all[i].InputDomains {
				needed[in] = true
			}
		}
	}

	var plan []step.Spec
	for i, s := range all {
		if keep[i] {
			plan = append(plan, s)
		}
	}
	return plan, nil
}

func (r *Runner) run(ctx context.Context, steps []step.Spec) (*Summary, error) {
	job := r.job()
	sum := &Summary{RunID: uuid.NewString(), Rows: map[string]int{}}
	ex := r.Extractor
	if ex == nil {
		ex = extract.NewCached(extract.Default)
	}

	log.Printf("runner: run=%s job=%s steps=%d", sum.RunID, job, len(steps))
	start := time.Now()
	produced := make(map[string]*table.Frame)

	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		log.Printf("runner: run=%s step %d/%d: %s", sum.RunID, i+1, len(steps), s)
		err := r.runStep(ctx, ex, s, produced, sum)
		metrics.RecordStep(job, err)
		if err != nil {
			log.Printf("runner: run=%s step %d failed: %v", sum.RunID, i+1, err)
			return sum, fmt.Errorf("step %d (%s): %w", i+1, s, err)
		}
		sum.Steps++
	}

	log.Printf("runner: run=%s done steps=%d loaded=%d elapsed=%s",
		sum.RunID, sum.Steps, len(sum.Loaded), time.Since(start).Truncate(time.Millisecond))
	return sum, nil
}

func (r *Runner) runStep(ctx context.Context, ex extract.Extractor, s step.Spec, produced map[string]*table.Frame, sum *Summary) error {
	ms, err := r.materialize(ctx, ex, s, produced)
	if err != nil {
		return err
	}

	out, err := r.transform(ctx, ms)
	if err != nil {
		return err
	}

	names := outputOrder(s, out)
	for _, d := range names {
		produced[d] = out[d]
	}

	if !s.Load {
		log.Printf("runner: load disabled; %d output(s) kept in memory", len(names))
		return nil
	}
	if r.Loader == nil {
		return nil
	}
	for _, d := range names {
		f := out[d]
		t0 := time.Now()
		err := r.Loader.Load(ctx, f, load.Options{ChunkSize: s.ChunkSize, Indexes: r.Registry.Indexes(d)})
		metrics.RecordPhase(r.job(), metrics.PhaseLoad, d, err, time.Since(t0))
		if err != nil {
			return fmt.Errorf("load %s: %w", d, err)
		}
		metrics.RecordRows(r.job(), "loaded", d, f.Len())
		sum.Loaded = append(sum.Loaded, d)
		sum.Rows[d] += f.Len()
	}
	return nil
}

// Materialize extracts the inputs of s from the data source catalog.
//
// Errors: ConfigError(UnknownDomain) when an input is not a declared data
// source, or the extractor's error.
func (r *Runner) Materialize(ctx context.Context, s step.Spec) (MaterializedStep, error) {
	ex := r.Extractor
	if ex == nil {
		ex = extract.Default
	}
	return r.materialize(ctx, ex, s, nil)
}

func (r *Runner) materialize(ctx context.Context, ex extract.Extractor, s step.Spec, produced map[string]*table.Frame) (MaterializedStep, error) {
	ms := MaterializedStep{Spec: s, Inputs: make(map[string]*table.Frame, len(s.InputDomains))}
	for _, d := range s.InputDomains {
		if f, ok := produced[d]; ok {
			ms.Inputs[d] = f.Clone("")
			continue
		}
		ds, err := r.Registry.DataSource(d)
		if err != nil {
			return ms, err
		}
		t0 := time.Now()
		f, err := ex.Extract(ctx, ds)
		metrics.RecordPhase(r.job(), metrics.PhaseExtract, d, err, time.Since(t0))
		if err != nil {
			return ms, err
		}
		metrics.RecordRows(r.job(), "extracted", d, f.Len())
		ms.Inputs[d] = f
	}
	return ms, nil
}

func (r *Runner) transform(ctx context.Context, ms MaterializedStep) (map[string]*table.Frame, error) {
	name := ms.Spec.FunctionName
	if name == "" {
		// Pass-through: only the inputs named as outputs leave the step.
		out := make(map[string]*table.Frame, len(ms.Spec.OutputDomains))
		for _, d := range ms.Spec.OutputDomains {
			if f, ok := ms.Inputs[d]; ok {
				out[d] = f
			}
		}
		return out, nil
	}
	if r.Functions == nil {
		return nil, fmt.Errorf("no function registry for %q", name)
	}
	t0 := time.Now()
	out, err := r.Functions.Apply(ctx, name, ms.Inputs)
	metrics.RecordPhase(r.job(), metrics.PhaseTransform, name, err, time.Since(t0))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// outputOrder lists the result keys: declared outputs first in declared
// order, then any other keys sorted. Declared outputs the function did not
// return are logged and skipped.
func outputOrder(s step.Spec, out map[string]*table.Frame) []string {
	names := make([]string, 0, len(out))
	seen := make(map[string]bool, len(out))
	for _, d := range s.OutputDomains {
		if seen[d] {
			continue
		}
		if _, ok := out[d]; !ok {
			log.Printf("runner: declared output %q not returned by %s", d, s)
			continue
		}
		seen[d] = true
		names = append(names, d)
	}
	var extra []string
	for d := range out {
		if !seen[d] {
			extra = append(extra, d)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func (r *Runner) job() string {
	if r.Job == "" {
		return "etl"
	}
	return r.Job
}
