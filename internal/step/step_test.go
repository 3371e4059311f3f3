package step

import (
	"errors"
	"reflect"
	"testing"

	"domainetl/internal/config"
	"domainetl/internal/etlerr"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestBuild_Normalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Params
		want Spec
	}{
		{
			name: "pass-through defaults outputs to inputs",
			in:   Params{InputDomains: []string{"lines1"}},
			want: Spec{InputDomains: []string{"lines1"}, OutputDomains: []string{"lines1"}, Load: true},
		},
		{
			name: "function without outputs keeps outputs absent",
			in:   Params{InputDomains: []string{"lines1"}, FunctionName: "f"},
			want: Spec{InputDomains: []string{"lines1"}, FunctionName: "f", Load: true},
		},
		{
			name: "explicit outputs kept",
			in:   Params{InputDomains: []string{"a", "b"}, FunctionName: "f", OutputDomains: []string{"x", "y"}},
			want: Spec{InputDomains: []string{"a", "b"}, FunctionName: "f", OutputDomains: []string{"x", "y"}, Load: true},
		},
		{
			name: "explicit empty outputs stay empty",
			in:   Params{InputDomains: []string{"a"}, OutputDomains: []string{}},
			want: Spec{InputDomains: []string{"a"}, OutputDomains: []string{}, Load: true},
		},
		{
			name: "domain names trimmed",
			in:   Params{InputDomains: []string{" lines1", "lines2 "}, FunctionName: "f", OutputDomains: []string{"\taa "}},
			want: Spec{InputDomains: []string{"lines1", "lines2"}, FunctionName: "f", OutputDomains: []string{"aa"}, Load: true},
		},
		{
			name: "pass-through defaults to trimmed inputs",
			in:   Params{InputDomains: []string{" lines1 "}},
			want: Spec{InputDomains: []string{"lines1"}, OutputDomains: []string{"lines1"}, Load: true},
		},
		{
			name: "load and chunk size",
			in:   Params{InputDomains: []string{"a"}, Load: boolPtr(false), ChunkSize: intPtr(15)},
			want: Spec{InputDomains: []string{"a"}, OutputDomains: []string{"a"}, Load: false, ChunkSize: 15},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Build(tc.in)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Build = %#v, want %#v", got, tc.want)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("Equal disagrees with DeepEqual")
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Params
	}{
		{"no inputs", Params{}},
		{"empty input list", Params{InputDomains: []string{}}},
		{"blank input", Params{InputDomains: []string{"a", " "}}},
		{"blank output", Params{InputDomains: []string{"a"}, OutputDomains: []string{""}}},
		{"zero chunk", Params{InputDomains: []string{"a"}, ChunkSize: intPtr(0)}},
		{"negative chunk", Params{InputDomains: []string{"a"}, ChunkSize: intPtr(-3)}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Build(tc.in); !errors.Is(err, etlerr.ErrInvalidStep) {
				t.Fatalf("Build err = %v, want InvalidStep", err)
			}
		})
	}
}

func TestBuild_DoesNotAliasInputs(t *testing.T) {
	t.Parallel()

	in := []string{"a"}
	s, err := Build(Params{InputDomains: in})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	in[0] = "mutated"
	if s.InputDomains[0] != "a" || s.OutputDomains[0] != "a" {
		t.Fatalf("spec aliased caller slice: %#v", s)
	}
	s.OutputDomains[0] = "changed"
	if s.InputDomains[0] != "a" {
		t.Fatalf("defaulted outputs share storage with inputs")
	}
	out := s.Inputs()
	out[0] = "x"
	if s.InputDomains[0] != "a" {
		t.Fatalf("Inputs() exposed internal slice")
	}
}

func TestSpec_Clone(t *testing.T) {
	t.Parallel()

	s, err := Build(Params{InputDomains: []string{"a"}, OutputDomains: []string{"b"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c := s.Clone()
	c.InputDomains[0], c.OutputDomains[0] = "x", "y"
	if s.InputDomains[0] != "a" || s.OutputDomains[0] != "b" {
		t.Fatalf("Clone shares slices: %s", s)
	}
	dyn := Spec{InputDomains: []string{"a"}, FunctionName: "f"}
	if dyn.Clone().OutputDomains != nil {
		t.Fatalf("Clone turned dynamic outputs into a list")
	}
}

func TestFromDecl(t *testing.T) {
	t.Parallel()

	s, err := FromDecl(config.StageDecl{InputDomains: config.StringList{"lines1"}})
	if err != nil {
		t.Fatalf("FromDecl: %v", err)
	}
	if !reflect.DeepEqual(s.OutputDomains, []string{"lines1"}) {
		t.Fatalf("outputs = %#v, want [lines1]", s.OutputDomains)
	}

	s, err = FromDecl(config.StageDecl{
		InputDomains:  config.StringList{"lines2", "lines1"},
		FunctionName:  "out_lines2",
		OutputDomains: config.StringList{"aaa", "bbb"},
		ChunkSize:     intPtr(15),
	})
	if err != nil {
		t.Fatalf("FromDecl: %v", err)
	}
	if !s.Consumes("lines1") || !s.Produces("bbb") || s.Produces("lines1") {
		t.Fatalf("Consumes/Produces mismatch for %v", s)
	}
	if !s.HasFunction() || !s.HasStaticOutputs() {
		t.Fatalf("flags mismatch for %v", s)
	}
}

func TestSpec_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec Spec
		want string
	}{
		{
			PassThrough("raw_x", true),
			"step (inputs: raw_x, outputs: raw_x, load: true)",
		},
		{
			Spec{InputDomains: []string{"a", "b"}, FunctionName: "f", Load: false, ChunkSize: 15},
			"step (inputs: a, b, function: f, outputs: <dynamic>, load: false) with chunks (chunk size: 15)",
		},
	}
	for _, tc := range tests {
		if got := tc.spec.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestSpec_EqualDistinguishesNilOutputs(t *testing.T) {
	t.Parallel()

	a := Spec{InputDomains: []string{"a"}, FunctionName: "f"}
	b := Spec{InputDomains: []string{"a"}, FunctionName: "f", OutputDomains: []string{}}
	if a.Equal(b) {
		t.Fatalf("dynamic outputs must differ from an explicit empty list")
	}
}
