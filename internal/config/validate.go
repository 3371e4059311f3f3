// Package config provides configuration models and helpers for ETL runs.
//
// This file adds a lightweight linter for Document values. It performs static
// checks over a decoded document and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests. Resolution enforces
// the hard invariants on its own; Validate exists to report everything at
// once, including softer problems resolution tolerates.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a problem worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the document (e.g. "data_sources[1].domain",
// "pipeline[0].chunk_size").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// knownSourceTypes are the extractor types shipped with the binary. Unknown
// types are warnings so that embedders can register their own.
var knownSourceTypes = map[string]struct{}{
	"csv":   {},
	"excel": {},
}

// knownStorageKinds are the loader backends shipped with the binary.
var knownStorageKinds = map[string]struct{}{
	"csv":      {},
	"sqlite":   {},
	"postgres": {},
	"mysql":    {},
	"mssql":    {},
}

// Validate performs static validation of a Document. It does not mutate the
// document.
//
// Example:
//
//	doc, err := config.Load(path)
//	if err != nil { ... }
//	for _, iss := range config.Validate(doc) {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func Validate(doc *Document) []Issue {
	var issues []Issue
	if doc == nil {
		return []Issue{{Severity: SeverityError, Path: "", Message: "document is nil"}}
	}
	issues = append(issues, validateDataSources(doc.DataSources)...)
	issues = append(issues, validatePipeline(doc.Pipeline, doc.DataSources)...)
	issues = append(issues, validateStorage(doc.Storage)...)
	return issues
}

func validateDataSources(ds []DataSourceDecl) []Issue {
	var issues []Issue

	if ds == nil {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "data_sources",
			Message:  "data_sources section is required",
		})
	}
	if len(ds) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "data_sources",
			Message:  "no data sources declared; nothing will be extracted",
		})
	}

	seen := make(map[string]int, len(ds))
	for i, d := range ds {
		base := fmt.Sprintf("data_sources[%d]", i)
		domain := strings.TrimSpace(d.Domain)
		if domain == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".domain",
				Message:  "domain must not be empty",
			})
		} else if first, dup := seen[domain]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".domain",
				Message:  fmt.Sprintf("domain %q already declared at data_sources[%d]", domain, first),
			})
		} else {
			seen[domain] = i
		}

		if strings.TrimSpace(d.Type) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".type",
				Message:  "type must not be empty",
			})
			continue
		}
		if _, ok := knownSourceTypes[d.Type]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     base + ".type",
				Message:  fmt.Sprintf("unknown data source type %q; ensure a matching extractor is registered", d.Type),
			})
			continue
		}
		if strings.TrimSpace(d.File) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     base + ".file",
				Message:  fmt.Sprintf("%s data source has no file; extracting it will fail", d.Type),
			})
		}
	}
	return issues
}

func validatePipeline(stages []StageDecl, ds []DataSourceDecl) []Issue {
	var issues []Issue

	// Domains available to a stage: every data source plus every static
	// output of an earlier stage.
	known := make(map[string]struct{}, len(ds))
	for _, d := range ds {
		known[strings.TrimSpace(d.Domain)] = struct{}{}
	}

	for i, s := range stages {
		base := fmt.Sprintf("pipeline[%d]", i)

		if len(s.InputDomains) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".input_domains",
				Message:  "input_domains must not be empty",
			})
		}
		for j, in := range s.InputDomains {
			p := fmt.Sprintf("%s.input_domains[%d]", base, j)
			if strings.TrimSpace(in) == "" {
				issues = append(issues, Issue{Severity: SeverityError, Path: p, Message: "domain name must not be empty"})
				continue
			}
			if _, ok := known[strings.TrimSpace(in)]; !ok {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     p,
					Message:  fmt.Sprintf("domain %q is neither a data source nor an output of an earlier stage", in),
				})
			}
		}

		if s.FunctionName != "" && s.OutputDomains == nil {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     base + ".output_domains",
				Message:  "function declared without output_domains; outputs are only known once the function runs",
			})
		}
		for j, out := range s.OutputDomains {
			if strings.TrimSpace(out) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("%s.output_domains[%d]", base, j),
					Message:  "domain name must not be empty",
				})
				continue
			}
			known[strings.TrimSpace(out)] = struct{}{}
			if s.FunctionName == "" && !containsTrimmed(s.InputDomains, out) {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("%s.output_domains[%d]", base, j),
					Message:  fmt.Sprintf("stage has no function and only passes its inputs through; %q is not one of them and will never be produced", out),
				})
			}
		}
		if s.FunctionName == "" && s.OutputDomains == nil {
			for _, in := range s.InputDomains {
				known[strings.TrimSpace(in)] = struct{}{}
			}
		}

		if s.ChunkSize != nil && *s.ChunkSize <= 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".chunk_size",
				Message:  fmt.Sprintf("chunk_size=%d; must be positive", *s.ChunkSize),
			})
		}
	}
	return issues
}

func validateStorage(s StorageDecl) []Issue {
	var issues []Issue

	kind := s.EffectiveKind()
	if _, ok := knownStorageKinds[kind]; !ok {
		return append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", kind),
		})
	}
	if kind == "csv" {
		if strings.TrimSpace(s.DSN) != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "storage.dsn",
				Message:  "dsn is ignored by the csv loader",
			})
		}
		return issues
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  fmt.Sprintf("storage.dsn must not be empty for kind %q", kind),
		})
	}
	return issues
}

func containsTrimmed(list []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, x := range list {
		if strings.TrimSpace(x) == v {
			return true
		}
	}
	return false
}
