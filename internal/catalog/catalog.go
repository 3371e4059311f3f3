// Package catalog turns the data source declarations of a config document
// into typed, immutable records keyed by domain.
package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"domainetl/internal/config"
	"domainetl/internal/etlerr"
)

// DataSource is one parsed data source declaration.
type DataSource struct {
	Domain string
	Type   string
	// File is the resolved locator: an absolute or base-relative path, or an
	// http(s) URL. Empty when the declaration has none.
	File string
	// Extras holds extractor-specific options.
	Extras config.Options
	Load   bool
}

// String renders the data source for logs.
func (d DataSource) String() string {
	file := "/"
	if d.File != "" {
		file = fmt.Sprintf("%q", d.File)
	}
	return fmt.Sprintf("data source (domain: %q, type: %q, file: %s)", d.Domain, d.Type, file)
}

// IsRemote reports whether File is an http(s) URL.
func (d DataSource) IsRemote() bool { return IsURL(d.File) }

// IsURL reports whether loc is an http(s) URL.
func IsURL(loc string) bool {
	l := strings.ToLower(loc)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Catalog holds the data sources of a document in declaration order. It is
// never mutated after Parse and is safe for concurrent readers.
type Catalog struct {
	order    []string
	byDomain map[string]DataSource
}

// Parse builds a Catalog. Relative file paths are joined onto baseDir (when
// non-empty); URLs and absolute paths are kept as written.
//
// It fails with ConfigError(DuplicateDomain) when two declarations share a
// domain and ConfigError(InvalidDeclaration) when a domain or type is empty.
func Parse(decls []config.DataSourceDecl, baseDir string) (*Catalog, error) {
	c := &Catalog{
		order:    make([]string, 0, len(decls)),
		byDomain: make(map[string]DataSource, len(decls)),
	}
	for i, d := range decls {
		domain := strings.TrimSpace(d.Domain)
		if domain == "" {
			return nil, etlerr.Configf(etlerr.InvalidDeclaration, "", "data_sources[%d]: domain must not be empty", i)
		}
		if strings.TrimSpace(d.Type) == "" {
			return nil, etlerr.Configf(etlerr.InvalidDeclaration, domain, "data_sources[%d]: type must not be empty", i)
		}
		if _, dup := c.byDomain[domain]; dup {
			return nil, etlerr.Config(etlerr.DuplicateDomain, domain)
		}

		extras := d.Options.Clone()
		if extras == nil {
			extras = config.Options{}
		}
		c.byDomain[domain] = DataSource{
			Domain: domain,
			Type:   d.Type,
			File:   resolveFile(d.File, baseDir),
			Extras: extras,
			Load:   d.LoadEnabled(),
		}
		c.order = append(c.order, domain)
	}
	return c, nil
}

func resolveFile(file, baseDir string) string {
	if file == "" || baseDir == "" || IsURL(file) || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(baseDir, file)
}

// clone copies d with its own Extras.
func (d DataSource) clone() DataSource {
	d.Extras = d.Extras.Clone()
	return d
}

// Lookup returns the data source for domain or ConfigError(UnknownDomain).
func (c *Catalog) Lookup(domain string) (DataSource, error) {
	ds, ok := c.byDomain[domain]
	if !ok {
		return DataSource{}, etlerr.Config(etlerr.UnknownDomain, domain)
	}
	return ds.clone(), nil
}

// Has reports whether domain is declared.
func (c *Catalog) Has(domain string) bool {
	_, ok := c.byDomain[domain]
	return ok
}

// Domains returns the declared domains in declaration order.
func (c *Catalog) Domains() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// All returns every data source in declaration order.
func (c *Catalog) All() []DataSource {
	out := make([]DataSource, 0, len(c.order))
	for _, d := range c.order {
		out = append(out, c.byDomain[d].clone())
	}
	return out
}

// Len returns the number of data sources.
func (c *Catalog) Len() int { return len(c.order) }
