// Package config defines the typed configuration document for an ETL run and
// the helpers used to load it.
//
// A document declares the raw data sources (one per domain) and an optional
// list of pipeline stages that consume domains and produce new ones:
//
//	data_sources:
//	  - domain: lines1
//	    type: csv
//	    file: lines1.csv
//	    options: { comma: ";" }
//	  - domain: lines2
//	    type: excel
//	    file: lines2.xlsx
//	    load: false
//	pipeline:
//	  - input_domains: lines1
//	    function_name: out_lines1
//	    output_domains: aa
//	    chunk_size: 15
//	  - input_domains: [lines2, lines1]
//	    function_name: out_lines2
//	    output_domains: [aaa, bbb]
//	indexes:
//	  __DEFAULT__: [id]
//	  aa: [day]
//	storage:
//	  kind: csv
//	  dir: outputs
//
// Field names mirror the YAML/JSON keys. Unknown keys are rejected when the
// document is decoded (see Parse), so a typo fails at startup instead of
// silently reading as "absent" later on.
package config

import "encoding/json"

// Document is the root of an ETL configuration file.
type Document struct {
	// DataSourceDir is the directory relative data source files are resolved
	// against. Empty means "data_sources" (see DefaultDataSourceDir).
	DataSourceDir string `yaml:"data_source_dir" json:"data_source_dir"`

	// DataSources is required. A nil slice means the section is absent; an
	// empty, non-nil slice is a valid (if useless) declaration.
	DataSources []DataSourceDecl `yaml:"data_sources" json:"data_sources"`

	// Pipeline lists the declared stages in execution order. Optional.
	Pipeline []StageDecl `yaml:"pipeline" json:"pipeline"`

	// Indexes configures per-domain index columns for database loaders.
	Indexes IndexSpec `yaml:"indexes" json:"indexes"`

	// Storage selects where loaded domains are written.
	Storage StorageDecl `yaml:"storage" json:"storage"`
}

// DefaultDataSourceDir is used when Document.DataSourceDir is empty.
const DefaultDataSourceDir = "data_sources"

// HasPipeline reports whether the document declares at least one stage.
func (d *Document) HasPipeline() bool { return len(d.Pipeline) > 0 }

// DataSourceDecl is one raw data source as written in the document.
type DataSourceDecl struct {
	// Domain is the unique name of the dataset.
	Domain string `yaml:"domain" json:"domain"`

	// Type selects the extractor (e.g. "csv", "excel").
	Type string `yaml:"type" json:"type"`

	// File locates the data: a path (relative paths are joined onto the data
	// source directory) or an http(s) URL.
	File string `yaml:"file" json:"file"`

	// Load controls whether the synthesized pass-through step loads the
	// domain. nil means true.
	Load *bool `yaml:"load" json:"load"`

	// Options is passed through to the extractor untouched.
	Options Options `yaml:"options" json:"options"`
}

// LoadEnabled returns the effective load flag (default true).
func (d DataSourceDecl) LoadEnabled() bool {
	return d.Load == nil || *d.Load
}

// StageDecl is one pipeline stage as written in the document.
type StageDecl struct {
	// InputDomains accepts a single string or a list.
	InputDomains StringList `yaml:"input_domains" json:"input_domains"`

	// FunctionName names a registered transform. Empty means no transform.
	FunctionName string `yaml:"function_name" json:"function_name"`

	// OutputDomains accepts a single string or a list. nil means absent.
	OutputDomains StringList `yaml:"output_domains" json:"output_domains"`

	// Load defaults to true when nil.
	Load *bool `yaml:"load" json:"load"`

	// ChunkSize, when set, must be positive.
	ChunkSize *int `yaml:"chunk_size" json:"chunk_size"`
}

// StorageDecl selects the loader backend.
type StorageDecl struct {
	// Kind is one of "csv" (default), "sqlite", "postgres", "mysql", "mssql".
	Kind string `yaml:"kind" json:"kind"`

	// Dir is the output directory for the csv kind. Empty means "outputs".
	Dir string `yaml:"dir" json:"dir"`

	// DSN is the connection string for database kinds.
	DSN string `yaml:"dsn" json:"dsn"`

	// Schema optionally qualifies table names for database kinds.
	Schema string `yaml:"schema" json:"schema"`
}

// DefaultOutputDir is used by the csv loader when StorageDecl.Dir is empty.
const DefaultOutputDir = "outputs"

// EffectiveKind returns Kind, or "csv" when empty.
func (s StorageDecl) EffectiveKind() string {
	if s.Kind == "" {
		return "csv"
	}
	return s.Kind
}

// Options is a small helper to fetch typed values from the free-form
// extractor options without introducing third-party configuration
// libraries. It performs only minimal type coercion and returns the provided
// default when a key is absent or of an unexpected type.
//
// Values may come from encoding/json (numbers as float64) or from yaml.v3
// (numbers as int or float64); both are accepted.
type Options map[string]any

// Clone returns a deep copy of o. Nested maps and slices are copied too.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			m[k] = cloneValue(vv)
		}
		return m
	case Options:
		return x.Clone()
	case map[string]string:
		m := make(map[string]string, len(x))
		for k, vv := range x {
			m[k] = vv
		}
		return m
	case []any:
		l := make([]any, len(x))
		for i, vv := range x {
			l[i] = cloneValue(vv)
		}
		return l
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case int64:
			return int(n)
		case uint64:
			return int(n)
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for single-character settings such as a CSV
// delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of
// strings. Non-string elements are skipped. Returns nil when the key is
// missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key, or nil.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON decodes a missing or null "options" object to a non-nil,
// empty Options map so call sites never nil-check.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
