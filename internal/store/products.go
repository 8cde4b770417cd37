package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/virex/internal/catalog"
	"github.com/JonMunkholm/virex/internal/importer"
)

// Product is a row of the products table.
type Product struct {
	ID             int64          `json:"id"`
	PartNumber     string         `json:"part_number"`
	CategoryID     *int64         `json:"category_id"`
	MakerID        *int64         `json:"maker_id"`
	SeriesID       *int64         `json:"series_id"`
	IsActive       bool           `json:"is_active"`
	IsNew          bool           `json:"is_new"`
	Specifications map[string]any `json:"specifications"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// productArgs are the basic-field parameters shared by insert and update.
type productArgs struct {
	CategoryID pgtype.Int8
	MakerID    pgtype.Int8
	SeriesID   pgtype.Int8
	IsActive   pgtype.Bool
	IsNew      pgtype.Bool
}

func idArg(data map[string]any, key string) pgtype.Int8 {
	id, ok := importer.AsInt64(data[key])
	if !ok {
		return pgtype.Int8{}
	}
	return catalog.ToPgInt8(&id)
}

// boolArg is NULL when the file had no such column, so the stored value or
// the column default applies.
func boolArg(data map[string]any, key string) pgtype.Bool {
	b, ok := data[key].(bool)
	if !ok {
		return pgtype.Bool{}
	}
	return pgtype.Bool{Bool: b, Valid: true}
}

func basicArgs(data map[string]any) productArgs {
	return productArgs{
		CategoryID: idArg(data, "category_id"),
		MakerID:    idArg(data, "maker_id"),
		SeriesID:   idArg(data, "series_id"),
		IsActive:   boolArg(data, "is_active"),
		IsNew:      boolArg(data, "is_new"),
	}
}

func specificationsJSON(data map[string]any) ([]byte, error) {
	specs, _ := data["specifications"].(map[string]any)
	if specs == nil {
		specs = map[string]any{}
	}
	return json.Marshal(specs)
}

// InsertProduct writes a new products row from planned operation data.
func (q *Queries) InsertProduct(ctx context.Context, partNumber string, data map[string]any) (int64, error) {
	specs, err := specificationsJSON(data)
	if err != nil {
		return 0, fmt.Errorf("encode specifications: %w", err)
	}
	a := basicArgs(data)

	var id int64
	err = q.db.QueryRow(ctx, `
		INSERT INTO products (part_number, category_id, maker_id, series_id, is_active, is_new, specifications)
		VALUES ($1, $2, $3, $4, COALESCE($5, TRUE), COALESCE($6, FALSE), $7)
		RETURNING id`,
		partNumber, a.CategoryID, a.MakerID, a.SeriesID, a.IsActive, a.IsNew, specs,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateProduct replaces the specifications of a product. Basic fields are
// only overwritten when the file supplied a value.
func (q *Queries) UpdateProduct(ctx context.Context, id int64, data map[string]any) error {
	specs, err := specificationsJSON(data)
	if err != nil {
		return fmt.Errorf("encode specifications: %w", err)
	}
	a := basicArgs(data)

	tag, err := q.db.Exec(ctx, `
		UPDATE products SET
			category_id = COALESCE($2, category_id),
			maker_id = COALESCE($3, maker_id),
			series_id = COALESCE($4, series_id),
			is_active = COALESCE($5, is_active),
			is_new = COALESCE($6, is_new),
			specifications = $7,
			updated_at = now()
		WHERE id = $1`,
		id, a.CategoryID, a.MakerID, a.SeriesID, a.IsActive, a.IsNew, specs,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistingProducts returns the stored specifications for the given part numbers.
func (q *Queries) ExistingProducts(ctx context.Context, partNumbers []string) ([]importer.ExistingRecord, error) {
	if len(partNumbers) == 0 {
		return nil, nil
	}
	rows, err := q.db.Query(ctx,
		`SELECT id, part_number, specifications FROM products WHERE part_number = ANY($1)`,
		partNumbers,
	)
	if err != nil {
		return nil, fmt.Errorf("query existing products: %w", err)
	}
	return scanExisting(rows)
}

func scanExisting(rows pgx.Rows) ([]importer.ExistingRecord, error) {
	defer rows.Close()

	var records []importer.ExistingRecord
	for rows.Next() {
		var (
			rec  importer.ExistingRecord
			spec []byte
		)
		if err := rows.Scan(&rec.ID, &rec.PartNumber, &spec); err != nil {
			return nil, fmt.Errorf("scan existing record: %w", err)
		}
		if len(spec) > 0 {
			if err := json.Unmarshal(spec, &rec.Specifications); err != nil {
				return nil, fmt.Errorf("decode specifications for %s: %w", rec.PartNumber, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// AttachDefaultImage links the category's default image to a product as its
// primary image. It does nothing when the category has no default image.
func (q *Queries) AttachDefaultImage(ctx context.Context, productID, categoryID int64) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO product_images (product_id, url, is_primary)
		SELECT $1, default_image_url, TRUE FROM categories
		WHERE id = $2 AND default_image_url IS NOT NULL AND default_image_url <> ''`,
		productID, categoryID,
	)
	return err
}

// ProductFilter selects a page of products.
type ProductFilter struct {
	Query      string
	CategoryID *int64
	Page       int
	PageSize   int
}

// ProductPage is one page of search results.
type ProductPage struct {
	Products   []Product `json:"products"`
	TotalRows  int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// SearchProducts lists active products matching a part-number substring.
func (q *Queries) SearchProducts(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	if f.PageSize <= 0 || f.PageSize > 200 {
		f.PageSize = 50
	}
	if f.Page < 1 {
		f.Page = 1
	}

	where, args := productWhere(f)

	var total int64
	if err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	totalPages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	offset := (f.Page - 1) * f.PageSize

	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY part_number LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)
	rows, err := q.db.Query(ctx, query, append(args, f.PageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &ProductPage{
		Products:   products,
		TotalRows:  total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}, nil
}

func productWhere(f ProductFilter) (string, []any) {
	conditions := []string{"is_active"}
	var args []any
	if s := strings.TrimSpace(f.Query); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		conditions = append(conditions, fmt.Sprintf("part_number ILIKE $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

const productColumns = `id, part_number, category_id, maker_id, series_id, is_active, is_new, specifications, created_at, updated_at`

// GetProduct looks up one product by part number.
func (q *Queries) GetProduct(ctx context.Context, partNumber string) (Product, error) {
	row := q.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE part_number = $1", partNumber)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p                         Product
		categoryID, maker, series pgtype.Int8
		specs                     []byte
	)
	err := row.Scan(&p.ID, &p.PartNumber, &categoryID, &maker, &series, &p.IsActive, &p.IsNew, &specs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	p.CategoryID = int8Ptr(categoryID)
	p.MakerID = int8Ptr(maker)
	p.SeriesID = int8Ptr(series)
	p.Specifications = map[string]any{}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return Product{}, fmt.Errorf("decode specifications: %w", err)
		}
	}
	return p, nil
}

func int8Ptr(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
