// Package catalog describes the persisted shapes of catalog products.
//
// Two persistence shapes coexist: the generic products table, which keeps
// specifications in a JSON column, and the per-category flat tables declared
// in category_tables.yaml. The registry here owns the second shape.
package catalog

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ColumnType is the declared type of a category table column.
type ColumnType string

const (
	ColumnText    ColumnType = "text"
	ColumnNumeric ColumnType = "numeric"
	ColumnInteger ColumnType = "integer"
	ColumnBool    ColumnType = "bool"
)

// Column is one typed column of a category table.
type Column struct {
	Name string     `yaml:"name"`
	Type ColumnType `yaml:"type"`
}

// CategoryTable describes the flat table backing one product category.
type CategoryTable struct {
	Key      string   `yaml:"key"`      // Stable identifier: "area_scan"
	Category string   `yaml:"category"` // Category name as stored in categories.name
	Table    string   `yaml:"table"`    // Database table: "products_area_scan"
	Columns  []Column `yaml:"columns"`
}

// ColumnNames returns the column names in declaration order.
func (t CategoryTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Subset returns a copy of t holding only the named columns, in declaration
// order. Unknown names are ignored.
func (t CategoryTable) Subset(names []string) CategoryTable {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}
	out := t
	out.Columns = make([]Column, 0, len(names))
	for _, c := range t.Columns {
		if want[strings.ToLower(c.Name)] {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}

// Column looks up a column by name, case-insensitively.
func (t CategoryTable) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

type tablesFile struct {
	Tables []CategoryTable `yaml:"tables"`
}

//go:embed category_tables.yaml
var categoryTablesYAML []byte

var identRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var (
	registry   = make(map[string]CategoryTable)
	registryMu sync.RWMutex
)

func init() {
	defs, err := ParseTables(categoryTablesYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded category tables: %v", err))
	}
	for _, def := range defs {
		Register(def)
	}
}

// ParseTables decodes and validates category table definitions from YAML.
func ParseTables(data []byte) ([]CategoryTable, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode category tables: %w", err)
	}

	for _, t := range f.Tables {
		if t.Key == "" || t.Category == "" {
			return nil, fmt.Errorf("category table %q: key and category are required", t.Table)
		}
		if !identRegex.MatchString(t.Table) {
			return nil, fmt.Errorf("category table %q: invalid table name", t.Table)
		}
		for _, c := range t.Columns {
			if !identRegex.MatchString(c.Name) {
				return nil, fmt.Errorf("category table %q: invalid column name %q", t.Table, c.Name)
			}
			if IsBaseColumn(c.Name) {
				return nil, fmt.Errorf("category table %q: column %q collides with a base column", t.Table, c.Name)
			}
			switch c.Type {
			case ColumnText, ColumnNumeric, ColumnInteger, ColumnBool:
			default:
				return nil, fmt.Errorf("category table %q: column %q has unknown type %q", t.Table, c.Name, c.Type)
			}
		}
	}
	return f.Tables, nil
}

// Register adds a category table definition.
// Panics if a table with the same key is already registered.
func Register(def CategoryTable) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("category table already registered: %s", def.Key))
	}
	registry[def.Key] = def
}

// Get returns a category table definition by key.
func Get(key string) (CategoryTable, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// ByCategoryName finds the table for a category name (case-insensitive).
func ByCategoryName(name string) (CategoryTable, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	name = strings.TrimSpace(name)
	for _, def := range registry {
		if strings.EqualFold(def.Category, name) {
			return def, true
		}
	}
	return CategoryTable{}, false
}

// All returns every registered category table sorted by key.
func All() []CategoryTable {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]CategoryTable, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// baseColumns are shared by every category table ahead of its own columns.
var baseColumns = []string{"part_number", "maker_id", "series_id", "is_active", "is_new"}

// BaseColumns returns the columns every category table carries.
func BaseColumns() []string {
	out := make([]string, len(baseColumns))
	copy(out, baseColumns)
	return out
}

// IsBaseColumn reports whether name is one of the shared base columns.
func IsBaseColumn(name string) bool {
	for _, c := range baseColumns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return strings.EqualFold(name, "category_id") || strings.EqualFold(name, "id")
}

// DDL returns the CREATE TABLE statement for a category table.
func (t CategoryTable) DDL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", t.Table)
	b.WriteString("    id BIGSERIAL PRIMARY KEY,\n")
	b.WriteString("    part_number TEXT NOT NULL UNIQUE,\n")
	b.WriteString("    maker_id BIGINT REFERENCES makers(id),\n")
	b.WriteString("    series_id BIGINT REFERENCES series(id),\n")
	b.WriteString("    is_active BOOLEAN NOT NULL DEFAULT TRUE,\n")
	b.WriteString("    is_new BOOLEAN NOT NULL DEFAULT FALSE,\n")
	for _, c := range t.Columns {
		fmt.Fprintf(&b, "    %s %s,\n", c.Name, sqlType(c.Type))
	}
	b.WriteString("    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),\n")
	b.WriteString("    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()\n")
	b.WriteString(")")
	return b.String()
}

func sqlType(t ColumnType) string {
	switch t {
	case ColumnNumeric:
		return "NUMERIC"
	case ColumnInteger:
		return "BIGINT"
	case ColumnBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}
