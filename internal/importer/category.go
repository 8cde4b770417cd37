package importer

import (
	"strings"

	"github.com/JonMunkholm/virex/internal/catalog"
)

// categoryRule reads bare column names declared by a category table and types
// them by the declared column type.
type categoryRule struct {
	table catalog.CategoryTable
}

func (r categoryRule) match(header string) (string, bool) {
	col, ok := r.table.Column(strings.TrimSpace(header))
	if !ok {
		return "", false
	}
	return col.Name, true
}

func (r categoryRule) coerce(key, raw string) (any, bool, error) {
	col, _ := r.table.Column(key)
	v, err := catalog.CoerceColumn(col, raw)
	if err != nil {
		return nil, false, err
	}
	return v, v != nil, nil
}

// NewCategoryProcessor returns the processor for a category table import.
// categoryID is applied to rows that do not name their own category.
func NewCategoryProcessor(refs *ReferenceCache, table catalog.CategoryTable, categoryID int64) *Processor {
	return &Processor{
		refs:       refs,
		rule:       categoryRule{table: table},
		categoryID: &categoryID,
		detect: func([]string) (string, bool) {
			return table.Category, true
		},
	}
}
