// Package etlerr defines the error taxonomy shared by config resolution and
// the run phase.
//
// Configuration problems are reported as *ConfigError and are meant to abort
// startup before anything is extracted. Problems that only surface while a
// step runs are reported as *TransformError. Both types match their kind
// sentinels with errors.Is:
//
//	if errors.Is(err, etlerr.ErrUnknownDomain) { ... }
//
// and expose the offending domain or function through errors.As.
package etlerr

import "fmt"

// ConfigErrorKind classifies a configuration error.
type ConfigErrorKind string

const (
	// MissingDataSources: the document has no data_sources section.
	MissingDataSources ConfigErrorKind = "missing_data_sources"
	// DuplicateDomain: two data sources declare the same domain.
	DuplicateDomain ConfigErrorKind = "duplicate_domain"
	// UnknownDomain: a lookup named a domain that is not a data source.
	UnknownDomain ConfigErrorKind = "unknown_domain"
	// UnknownOutputDomain: no step statically produces the domain.
	UnknownOutputDomain ConfigErrorKind = "unknown_output_domain"
	// UnknownFunction: a function name has no registered transform.
	UnknownFunction ConfigErrorKind = "unknown_function"
	// InvalidStep: a pipeline stage breaks a step invariant (e.g. no inputs).
	InvalidStep ConfigErrorKind = "invalid_step"
	// InvalidDeclaration: a data source declaration is malformed.
	InvalidDeclaration ConfigErrorKind = "invalid_declaration"
)

// ConfigError reports a configuration problem detected at resolution time
// (or at the first use of a lookup).
type ConfigError struct {
	Kind ConfigErrorKind
	// Subject is the domain or function name the error is about, if any.
	Subject string
	// Detail is an optional free-form explanation.
	Detail string
}

// Error implements error.
func (e *ConfigError) Error() string {
	var msg string
	switch e.Kind {
	case MissingDataSources:
		msg = "data_sources missing in the etl config"
	case DuplicateDomain:
		msg = fmt.Sprintf("domain %q declared more than once in the etl config data sources", e.Subject)
	case UnknownDomain:
		msg = fmt.Sprintf("domain %q not defined in the etl config data sources", e.Subject)
	case UnknownOutputDomain:
		msg = fmt.Sprintf("output domain %q not defined in the etl config", e.Subject)
	case UnknownFunction:
		msg = fmt.Sprintf("function %q is not registered", e.Subject)
	case InvalidStep:
		msg = "invalid pipeline step"
	case InvalidDeclaration:
		msg = "invalid data source declaration"
	default:
		msg = "config error: " + string(e.Kind)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches another *ConfigError of the same kind. A target with an empty
// Subject matches any subject, so the package sentinels work with errors.Is.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Subject == "" || t.Subject == e.Subject)
}

// Sentinels for errors.Is.
var (
	ErrMissingDataSources  = &ConfigError{Kind: MissingDataSources}
	ErrDuplicateDomain     = &ConfigError{Kind: DuplicateDomain}
	ErrUnknownDomain       = &ConfigError{Kind: UnknownDomain}
	ErrUnknownOutputDomain = &ConfigError{Kind: UnknownOutputDomain}
	ErrUnknownFunction     = &ConfigError{Kind: UnknownFunction}
	ErrInvalidStep         = &ConfigError{Kind: InvalidStep}
	ErrInvalidDeclaration  = &ConfigError{Kind: InvalidDeclaration}
)

// Config is shorthand for building a *ConfigError.
func Config(kind ConfigErrorKind, subject string) *ConfigError {
	return &ConfigError{Kind: kind, Subject: subject}
}

// Configf builds a *ConfigError with a formatted detail.
func Configf(kind ConfigErrorKind, subject, format string, a ...any) *ConfigError {
	return &ConfigError{Kind: kind, Subject: subject, Detail: fmt.Sprintf(format, a...)}
}

// TransformErrorKind classifies a run-time transform failure.
type TransformErrorKind string

const (
	// NotCallable: the name is registered but holds no invocable function.
	NotCallable TransformErrorKind = "not_callable"
	// Failed: the function ran and returned an error.
	Failed TransformErrorKind = "failed"
)

// TransformError reports a failure while applying a named transform.
type TransformError struct {
	Kind     TransformErrorKind
	Function string
	Err      error
}

// Error implements error.
func (e *TransformError) Error() string {
	switch e.Kind {
	case NotCallable:
		return fmt.Sprintf("%s exists but is not a function", e.Function)
	case Failed:
		return fmt.Sprintf("transform %s: %v", e.Function, e.Err)
	default:
		return fmt.Sprintf("transform %s: %s", e.Function, e.Kind)
	}
}

// Unwrap returns the underlying function error, if any.
func (e *TransformError) Unwrap() error { return e.Err }

// Is matches another *TransformError of the same kind (and function, when the
// target names one).
func (e *TransformError) Is(target error) bool {
	t, ok := target.(*TransformError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Function == "" || t.Function == e.Function)
}

// Sentinels for errors.Is.
var (
	ErrNotCallable     = &TransformError{Kind: NotCallable}
	ErrTransformFailed = &TransformError{Kind: Failed}
)
