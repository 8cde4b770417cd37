package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Category is a row of the categories table.
type Category struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug,omitempty"`
	DefaultImageURL string `json:"default_image_url,omitempty"`
}

// ListCategories returns every category ordered by name.
func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name, slug, default_image_url FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory looks up a category by id.
func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	c, err := scanCategory(q.db.QueryRow(ctx, `SELECT id, name, slug, default_image_url FROM categories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

func scanCategory(row pgx.Row) (Category, error) {
	var (
		c     Category
		slug  pgtype.Text
		image pgtype.Text
	)
	if err := row.Scan(&c.ID, &c.Name, &slug, &image); err != nil {
		return Category{}, err
	}
	c.Slug = slug.String
	c.DefaultImageURL = image.String
	return c, nil
}
