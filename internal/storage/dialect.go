package storage

import (
	"fmt"
	"strings"
)

// Dialect captures the few SQL differences the database loader cares about.
type Dialect struct {
	// Ident quotes a single identifier segment.
	Ident func(string) string

	// TextType is the column type used for every loaded column.
	TextType string

	// IndexColumn renders a column inside CREATE INDEX. Nil means Ident.
	// MySQL needs a prefix length to index TEXT columns.
	IndexColumn func(string) string
}

var dialects = map[string]Dialect{}

// RegisterDialect installs the dialect for kind. Called from backend init.
func RegisterDialect(kind string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[kind] = d
}

// DialectFor returns the dialect registered for kind.
func DialectFor(kind string) (Dialect, error) {
	mu.RLock()
	d, ok := dialects[kind]
	mu.RUnlock()
	if !ok {
		return Dialect{}, fmt.Errorf("no dialect registered for storage.kind=%s", kind)
	}
	return d, nil
}

// FQN quotes a possibly schema-qualified name segment by segment.
func (d Dialect) FQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.Ident(p)
	}
	return strings.Join(parts, ".")
}

// DropTable renders DROP TABLE IF EXISTS for table.
func (d Dialect) DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + d.FQN(table)
}

// CreateTable renders a CREATE TABLE with every column typed as TextType.
func (d Dialect) CreateTable(table string, columns []string) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("create table %s: no columns", table)
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = d.Ident(c) + " " + d.TextType
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.FQN(table), strings.Join(defs, ", ")), nil
}

// CreateIndex renders a CREATE INDEX named name over columns of table.
func (d Dialect) CreateIndex(table, name string, columns []string) string {
	col := d.IndexColumn
	if col == nil {
		col = d.Ident
	}
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = col(c)
	}
	return fmt.Sprintf("CREATE INDEX %s ON %s (%s)", d.Ident(name), d.FQN(table), strings.Join(cols, ", "))
}
