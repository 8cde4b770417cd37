package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/virex/internal/catalog"
	"github.com/JonMunkholm/virex/internal/importer"
)

// ExistingCategoryProducts returns the typed columns listed in table for
// stored rows as a specifications map. NULL columns are left out so the
// map matches what the importer produces for empty cells.
func (q *Queries) ExistingCategoryProducts(ctx context.Context, table catalog.CategoryTable, partNumbers []string) ([]importer.ExistingRecord, error) {
	if len(partNumbers) == 0 {
		return nil, nil
	}
	rows, err := q.db.Query(ctx, existingCategoryQuery(table), partNumbers)
	if err != nil {
		return nil, fmt.Errorf("query existing %s: %w", table.Table, err)
	}
	return scanExisting(rows)
}

func existingCategoryQuery(table catalog.CategoryTable) string {
	pairs := make([]string, 0, len(table.Columns))
	for _, c := range table.Columns {
		pairs = append(pairs, fmt.Sprintf("'%s', %s", c.Name, quoteIdentifier(c.Name)))
	}
	specs := "'{}'::jsonb"
	if len(pairs) > 0 {
		specs = fmt.Sprintf("jsonb_strip_nulls(jsonb_build_object(%s))", strings.Join(pairs, ", "))
	}
	return fmt.Sprintf("SELECT id, part_number, %s FROM %s WHERE part_number = ANY($1)",
		specs, quoteIdentifier(table.Table))
}

// InsertCategoryProduct writes a new row to a category table.
func (q *Queries) InsertCategoryProduct(ctx context.Context, table catalog.CategoryTable, partNumber string, data map[string]any) (int64, error) {
	query, args := buildCategoryInsert(table, partNumber, data)

	var id int64
	if err := q.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateCategoryProduct overwrites the typed columns listed in table, so
// callers pass the table narrowed to the columns an import file carries.
// Basic fields are only overwritten when the file supplied a value.
func (q *Queries) UpdateCategoryProduct(ctx context.Context, table catalog.CategoryTable, id int64, data map[string]any) error {
	query, args := buildCategoryUpdate(table, id, data)

	tag, err := q.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func buildCategoryInsert(table catalog.CategoryTable, partNumber string, data map[string]any) (string, []any) {
	a := basicArgs(data)
	cols := []string{"part_number", "maker_id", "series_id", "is_active", "is_new"}
	placeholders := []string{"$1", "$2", "$3", "COALESCE($4, TRUE)", "COALESCE($5, FALSE)"}
	args := []any{partNumber, a.MakerID, a.SeriesID, a.IsActive, a.IsNew}

	for _, c := range table.Columns {
		args = append(args, columnArg(c, data[c.Name]))
		cols = append(cols, c.Name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		quoteIdentifier(table.Table),
		strings.Join(quoteColumns(cols), ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args
}

func buildCategoryUpdate(table catalog.CategoryTable, id int64, data map[string]any) (string, []any) {
	a := basicArgs(data)
	sets := []string{
		"maker_id = COALESCE($2, maker_id)",
		"series_id = COALESCE($3, series_id)",
		"is_active = COALESCE($4, is_active)",
		"is_new = COALESCE($5, is_new)",
	}
	args := []any{id, a.MakerID, a.SeriesID, a.IsActive, a.IsNew}

	for _, c := range table.Columns {
		args = append(args, columnArg(c, data[c.Name]))
		sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdentifier(c.Name), len(args)))
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1",
		quoteIdentifier(table.Table),
		strings.Join(sets, ", "),
	)
	return query, args
}

// columnArg converts a planned value to a parameter for a typed column.
// Plans that went through a JSON round trip carry numbers as float64.
func columnArg(c catalog.Column, v any) any {
	if v == nil {
		return nil
	}
	switch c.Type {
	case catalog.ColumnInteger:
		if n, ok := importer.AsInt64(v); ok {
			return n
		}
	case catalog.ColumnNumeric:
		switch n := v.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		}
	case catalog.ColumnBool:
		if b, ok := v.(bool); ok {
			return b
		}
	default:
		return fmt.Sprint(v)
	}
	return nil
}
