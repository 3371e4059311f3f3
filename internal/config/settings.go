package config

import (
	"flag"
	"os"
	"strings"
)

// Settings holds process configuration derived from flags and environment
// variables. Flags are defined first so that -help shows every knob and its
// default; environment values seed the defaults and explicit flags win.
//
// Typical usage:
//
//	s, err := config.LoadSettings(flag.CommandLine, os.Getenv, os.Args[1:])
//
// For tests, pass a private FlagSet and a map-backed getenv to stay hermetic.
type Settings struct {
	// ConfigPath is the YAML/JSON document to load.
	ConfigPath string

	// DataSourceDir overrides Document.DataSourceDir when non-empty.
	DataSourceDir string

	// StorageKind, OutputDir and DSN override the document's storage section
	// when non-empty.
	StorageKind string
	OutputDir   string
	DSN         string

	// Domains restricts the run to the steps producing these domains.
	Domains []string

	// Job labels metrics and log lines.
	Job string

	// MetricsBackend is "none", "pushgateway" or "datadog".
	MetricsBackend string
	PushgatewayURL string
	DatadogAddr    string

	// ValidateOnly lints and resolves the document, prints the plan and exits.
	ValidateOnly bool
	Verbose      bool
}

// LoadSettings defines flags on fs, seeds their defaults from getenv and
// parses args.
func LoadSettings(fs *flag.FlagSet, getenv func(string) string, args []string) (*Settings, error) {
	s := &Settings{}

	envOr := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	boolEnvOr := func(k string, d bool) bool {
		switch strings.ToLower(getenv(k)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
		return d
	}

	var domains string
	fs.StringVar(&s.ConfigPath, "config", envOr("ETL_CONFIG", "config/etl_config.yml"), "ETL config document (YAML or JSON)")
	fs.StringVar(&s.DataSourceDir, "data_source_dir", getenv("DATA_SOURCE_DIR"), "directory relative data source files are read from (overrides the document)")
	fs.StringVar(&s.StorageKind, "storage", getenv("STORAGE_KIND"), "loader backend: csv, sqlite, postgres, mysql, mssql (overrides the document)")
	fs.StringVar(&s.OutputDir, "output_dir", getenv("OUTPUT_DIR"), "output directory for the csv loader (overrides the document)")
	fs.StringVar(&s.DSN, "dsn", getenv("DB_DSN"), "database DSN for database loaders (overrides the document)")
	fs.StringVar(&domains, "domains", getenv("ETL_DOMAINS"), "comma-separated output domains to produce (default: all steps)")
	fs.StringVar(&s.Job, "job", envOr("ETL_JOB", "etl"), "job name used in metrics and logs")
	fs.StringVar(&s.MetricsBackend, "metrics-backend", envOr("METRICS_BACKEND", "none"), "metrics backend: none, pushgateway, datadog")
	fs.StringVar(&s.PushgatewayURL, "pushgateway-url", envOr("PUSHGATEWAY_URL", "http://localhost:9091"), "Pushgateway base URL")
	fs.StringVar(&s.DatadogAddr, "datadog-addr", envOr("DD_AGENT_ADDR", "127.0.0.1:8125"), "DogStatsD address")
	fs.BoolVar(&s.ValidateOnly, "validate", boolEnvOr("ETL_VALIDATE", false), "validate the configuration, print the resolved plan and exit")
	fs.BoolVar(&s.Verbose, "v", boolEnvOr("ETL_VERBOSE", false), "enable verbose logs")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	s.Domains = splitList(domains)
	return s, nil
}

// DefaultSettings is the production entry point: process flag set, process
// environment and os.Args.
func DefaultSettings() (*Settings, error) {
	return LoadSettings(flag.CommandLine, os.Getenv, os.Args[1:])
}

// Apply copies the non-empty overrides into doc.
func (s *Settings) Apply(doc *Document) {
	if s.DataSourceDir != "" {
		doc.DataSourceDir = s.DataSourceDir
	}
	if s.StorageKind != "" {
		doc.Storage.Kind = s.StorageKind
	}
	if s.OutputDir != "" {
		doc.Storage.Dir = s.OutputDir
	}
	if s.DSN != "" {
		doc.Storage.DSN = s.DSN
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
