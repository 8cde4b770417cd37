package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/virex/internal/catalog"
	"github.com/JonMunkholm/virex/internal/importer"
)

// genericTemplateSpecs are example specification columns for the products
// template. Any spec_ column is accepted.
var genericTemplateSpecs = []string{"spec_resolution", "spec_frame_rate", "spec_interface"}

// ImportTemplate is a CSV header row for one import format.
type ImportTemplate struct {
	FileName string   `json:"fileName"`
	Columns  []string `json:"columns"`
}

// CSV returns the template as a single header line.
func (t ImportTemplate) CSV() string {
	return strings.Join(t.Columns, ",") + "\n"
}

// Template returns the import template for the products table, or for the
// category table of categoryID when it is set.
func (s *Service) Template(ctx context.Context, categoryID *int64) (ImportTemplate, error) {
	if categoryID == nil {
		return GenericTemplate(), nil
	}
	table, err := s.categoryTable(ctx, categoryID)
	if err != nil {
		return ImportTemplate{}, err
	}
	return CategoryTemplate(table), nil
}

// GenericTemplate is the products import header.
func GenericTemplate() ImportTemplate {
	cols := append([]string{}, importer.BasicColumns...)
	cols = append(cols, importer.ReferenceColumns...)
	cols = append(cols, genericTemplateSpecs...)
	return ImportTemplate{FileName: "products_template.csv", Columns: cols}
}

// CategoryTemplate is the header for one category table import.
func CategoryTemplate(table catalog.CategoryTable) ImportTemplate {
	cols := catalog.BaseColumns()
	cols = append(cols, "maker", "series")
	cols = append(cols, table.ColumnNames()...)
	return ImportTemplate{FileName: fmt.Sprintf("%s_template.csv", table.Key), Columns: cols}
}
