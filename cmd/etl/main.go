package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"domainetl/internal/config"
	"domainetl/internal/load"
	"domainetl/internal/metrics"
	"domainetl/internal/metrics/datadog"
	"domainetl/internal/metrics/prompush"
	"domainetl/internal/resolver"
	"domainetl/internal/runner"
	"domainetl/internal/step"

	// register all backends with the storage factory.
	// the document picks one but the binary ships support for all of them.
	_ "domainetl/internal/storage/all"
)

// main is the entry point for the ETL binary. It loads and lints the config
// document, resolves it into steps, optionally initializes a metrics backend
// and runs the pipeline.
func main() {
	s, err := config.DefaultSettings()
	if err != nil {
		fatalf("flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, s, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, s *config.Settings, stdout, stderr io.Writer) int {
	doc, err := config.Load(s.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	s.Apply(doc)

	issues := config.Validate(doc)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", s.ConfigPath)
		return 1
	}

	fns := functions()
	reg, err := resolver.Resolve(doc, resolver.WithFunctions(fns))
	if err != nil {
		fmt.Fprintf(stderr, "resolve: %v\n", err)
		return 1
	}

	r := &runner.Runner{Registry: reg, Functions: fns, Job: s.Job}

	if s.ValidateOnly {
		steps, err := r.Plan(s.Domains...)
		if err != nil {
			fmt.Fprintf(stderr, "plan: %v\n", err)
			return 1
		}
		printPlan(stdout, reg, steps)
		log.Printf("Configuration is valid: %v", s.ConfigPath)
		return 0
	}

	defer setupMetrics(s)()

	ld, err := load.New(ctx, doc.Storage)
	if err != nil {
		fmt.Fprintf(stderr, "loader: %v\n", err)
		return 1
	}
	defer func() {
		if err := ld.Close(); err != nil {
			log.Printf("loader: close: %v", err)
		}
	}()
	r.Loader = ld

	if s.Verbose {
		log.Printf("pipeline: config=%s steps=%d storage=%s domains=%v",
			s.ConfigPath, reg.Len(), doc.Storage.Kind, s.Domains)
	}

	start := time.Now()
	var sum *runner.Summary
	if len(s.Domains) > 0 {
		sum, err = r.RunFor(ctx, s.Domains...)
	} else {
		sum, err = r.Run(ctx)
	}
	if err != nil {
		log.Printf("%v", err)
		return 1
	}

	if s.Verbose {
		for _, d := range sum.Loaded {
			log.Printf("loaded %s: %d rows", d, sum.Rows[d])
		}
		log.Printf("run %s: %d steps completed in %s", sum.RunID, sum.Steps, time.Since(start).Truncate(time.Millisecond))
	}
	return 0
}

// setupMetrics installs the configured backend and returns the flush to
// defer. Backend failures degrade to the nop backend.
func setupMetrics(s *config.Settings) func() {
	flush := func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}

	switch s.MetricsBackend {
	case "pushgateway":
		b, err := prompush.NewBackend(s.Job, s.PushgatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return func() {}
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", s.PushgatewayURL, s.MetricsBackend, s.Job)
		metrics.SetBackend(b)
		return flush

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       s.DatadogAddr,
			Namespace:  "etl.",
			GlobalTags: []string{"job:" + s.Job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return func() {}
		}
		log.Printf("metrics: addr=%v, backend=%v, job_name=%v", s.DatadogAddr, s.MetricsBackend, s.Job)
		metrics.SetBackend(b)
		return flush

	case "", "none":
		if s.Verbose {
			log.Printf("metrics: disabled (backend=%q)", s.MetricsBackend)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", s.MetricsBackend)
	}
	return func() {}
}

// printPlan writes the resolved steps, one per line, after a header carrying
// the registry fingerprint.
func printPlan(w io.Writer, reg *resolver.Registry, steps []step.Spec) {
	fmt.Fprintf(w, "plan: %d of %d steps, fingerprint %016x\n", len(steps), reg.Len(), reg.Fingerprint())
	for i, s := range steps {
		fmt.Fprintf(w, "%3d  %s\n", i+1, s)
	}
	if raw := reg.RawOnlyDomains(); len(raw) > 0 {
		fmt.Fprintf(w, "pass-through domains: %v\n", raw)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
