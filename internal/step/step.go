// Package step holds the normalized representation of one ETL step.
package step

import (
	"fmt"
	"strings"

	"domainetl/internal/config"
	"domainetl/internal/etlerr"
)

// Spec is one resolved ETL step. A Spec is a value: it is built once by
// Build and never mutated afterwards. Slices are owned by the Spec; accessors
// that hand them out return copies.
type Spec struct {
	InputDomains []string
	// FunctionName is empty for pass-through steps.
	FunctionName string
	// OutputDomains is nil when a function is set and no outputs were
	// declared; the function's result keys name the outputs at run time.
	OutputDomains []string
	Load          bool
	// ChunkSize is 0 when absent.
	ChunkSize int
}

// Params are the raw construction arguments for Build. Nil pointers mean
// "absent".
type Params struct {
	InputDomains  []string
	FunctionName  string
	OutputDomains []string
	Load          *bool
	ChunkSize     *int
}

// Build normalizes p into a Spec:
//
//   - InputDomains must be non-empty and contain no empty names. Domain
//     names are trimmed of surrounding space, as data source domains are.
//   - With no function and no outputs, OutputDomains is a copy of
//     InputDomains. An explicitly empty output list stays empty.
//   - Load defaults to true.
//   - ChunkSize, when given, must be positive.
func Build(p Params) (Spec, error) {
	if len(p.InputDomains) == 0 {
		return Spec{}, etlerr.Configf(etlerr.InvalidStep, p.FunctionName, "input domains must not be empty")
	}
	inputs := trimmed(p.InputDomains)
	for i, d := range inputs {
		if d == "" {
			return Spec{}, etlerr.Configf(etlerr.InvalidStep, p.FunctionName, "input domain %d is empty", i)
		}
	}

	s := Spec{
		InputDomains: inputs,
		FunctionName: p.FunctionName,
		Load:         true,
	}
	switch {
	case p.OutputDomains == nil && p.FunctionName == "":
		s.OutputDomains = clone(inputs)
	case p.OutputDomains != nil:
		outputs := trimmed(p.OutputDomains)
		for i, d := range outputs {
			if d == "" {
				return Spec{}, etlerr.Configf(etlerr.InvalidStep, p.FunctionName, "output domain %d is empty", i)
			}
		}
		s.OutputDomains = outputs
	}
	if p.Load != nil {
		s.Load = *p.Load
	}
	if p.ChunkSize != nil {
		if *p.ChunkSize <= 0 {
			return Spec{}, etlerr.Configf(etlerr.InvalidStep, p.FunctionName, "chunk size must be positive, got %d", *p.ChunkSize)
		}
		s.ChunkSize = *p.ChunkSize
	}
	return s, nil
}

// FromDecl builds a Spec from a declared pipeline stage.
func FromDecl(d config.StageDecl) (Spec, error) {
	return Build(Params{
		InputDomains:  d.InputDomains,
		FunctionName:  d.FunctionName,
		OutputDomains: d.OutputDomains,
		Load:          d.Load,
		ChunkSize:     d.ChunkSize,
	})
}

// PassThrough is the step synthesized for a raw-only data source.
func PassThrough(domain string, load bool) Spec {
	return Spec{
		InputDomains:  []string{domain},
		OutputDomains: []string{domain},
		Load:          load,
	}
}

// HasFunction reports whether the step applies a transform.
func (s Spec) HasFunction() bool { return s.FunctionName != "" }

// HasStaticOutputs reports whether the outputs are known before running.
func (s Spec) HasStaticOutputs() bool { return s.OutputDomains != nil }

// Consumes reports whether domain is one of the step's inputs.
func (s Spec) Consumes(domain string) bool { return contains(s.InputDomains, domain) }

// Produces reports whether domain is one of the step's static outputs.
func (s Spec) Produces(domain string) bool { return contains(s.OutputDomains, domain) }

// Inputs returns a copy of the input domains.
func (s Spec) Inputs() []string { return clone(s.InputDomains) }

// Outputs returns a copy of the static output domains (nil when dynamic).
func (s Spec) Outputs() []string { return clone(s.OutputDomains) }

// Clone returns a copy of s that shares no slices with it.
func (s Spec) Clone() Spec {
	s.InputDomains = clone(s.InputDomains)
	s.OutputDomains = clone(s.OutputDomains)
	return s
}

// Equal reports whether two specs have the same fields.
func (s Spec) Equal(o Spec) bool {
	return s.FunctionName == o.FunctionName &&
		s.Load == o.Load &&
		s.ChunkSize == o.ChunkSize &&
		equalList(s.InputDomains, o.InputDomains) &&
		(s.OutputDomains == nil) == (o.OutputDomains == nil) &&
		equalList(s.OutputDomains, o.OutputDomains)
}

func (s Spec) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "step (inputs: %s", strings.Join(s.InputDomains, ", "))
	if s.HasFunction() {
		fmt.Fprintf(&b, ", function: %s", s.FunctionName)
	}
	switch {
	case s.OutputDomains == nil:
		b.WriteString(", outputs: <dynamic>")
	default:
		fmt.Fprintf(&b, ", outputs: %s", strings.Join(s.OutputDomains, ", "))
	}
	fmt.Fprintf(&b, ", load: %t)", s.Load)
	if s.ChunkSize > 0 {
		fmt.Fprintf(&b, " with chunks (chunk size: %d)", s.ChunkSize)
	}
	return b.String()
}

func clone(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// trimmed copies in with every name trimmed; nil stays nil.
func trimmed(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, d := range in {
		out[i] = strings.TrimSpace(d)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func equalList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
