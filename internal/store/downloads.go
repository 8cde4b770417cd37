package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/virex/internal/catalog"
)

// Download is a file offered in the support center.
type Download struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	ObjectKey   string    `json:"-"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// InsertDownload records an uploaded file and returns it with id and timestamp.
func (q *Queries) InsertDownload(ctx context.Context, d Download) (Download, error) {
	err := q.db.QueryRow(ctx, `
		INSERT INTO downloads (title, file_name, object_key, url, content_type, size_bytes, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		d.Title, d.FileName, d.ObjectKey, d.URL, catalog.ToPgText(d.ContentType), d.SizeBytes, catalog.ToPgInt8(d.CategoryID),
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return Download{}, err
	}
	return d, nil
}

// ListDownloads returns all downloads, newest first.
func (q *Queries) ListDownloads(ctx context.Context) ([]Download, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, title, file_name, object_key, url, content_type, size_bytes, category_id, created_at
		FROM downloads ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query downloads: %w", err)
	}
	defer rows.Close()

	downloads := []Download{}
	for rows.Next() {
		var (
			d           Download
			contentType pgtype.Text
			categoryID  pgtype.Int8
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.FileName, &d.ObjectKey, &d.URL, &contentType, &d.SizeBytes, &categoryID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		d.ContentType = contentType.String
		d.CategoryID = int8Ptr(categoryID)
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}
