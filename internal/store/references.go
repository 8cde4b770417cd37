package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/virex/internal/catalog"
	"github.com/JonMunkholm/virex/internal/importer"
)

// LoadReferences reads the maker, series and category tables in full.
func (q *Queries) LoadReferences(ctx context.Context) (importer.References, error) {
	var refs importer.References
	var err error

	if refs.Makers, err = q.loadReferenceTable(ctx, "SELECT id, name FROM makers"); err != nil {
		return refs, fmt.Errorf("load makers: %w", err)
	}
	if refs.Series, err = q.loadReferenceTable(ctx, "SELECT id, series_name FROM series"); err != nil {
		return refs, fmt.Errorf("load series: %w", err)
	}
	if refs.Categories, err = q.loadReferenceTable(ctx, "SELECT id, name FROM categories"); err != nil {
		return refs, fmt.Errorf("load categories: %w", err)
	}
	return refs, nil
}

func (q *Queries) loadReferenceTable(ctx context.Context, query string) ([]importer.Reference, error) {
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []importer.Reference
	for rows.Next() {
		var r importer.Reference
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// CreateSeries inserts a series scoped to a category and maker when known.
func (q *Queries) CreateSeries(ctx context.Context, name string, categoryID, makerID *int64) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx,
		`INSERT INTO series (series_name, category_id, maker_id) VALUES ($1, $2, $3) RETURNING id`,
		name, catalog.ToPgInt8(categoryID), catalog.ToPgInt8(makerID),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
