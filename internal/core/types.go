package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/virex/internal/catalog"
	"github.com/JonMunkholm/virex/internal/importer"
	"github.com/JonMunkholm/virex/internal/store"
)

// Store is the persistence the service needs. *store.Queries satisfies it.
type Store interface {
	importer.SeriesCreator

	LoadReferences(ctx context.Context) (importer.References, error)

	ExistingProducts(ctx context.Context, partNumbers []string) ([]importer.ExistingRecord, error)
	InsertProduct(ctx context.Context, partNumber string, data map[string]any) (int64, error)
	UpdateProduct(ctx context.Context, id int64, data map[string]any) error
	AttachDefaultImage(ctx context.Context, productID, categoryID int64) error

	ExistingCategoryProducts(ctx context.Context, table catalog.CategoryTable, partNumbers []string) ([]importer.ExistingRecord, error)
	InsertCategoryProduct(ctx context.Context, table catalog.CategoryTable, partNumber string, data map[string]any) (int64, error)
	UpdateCategoryProduct(ctx context.Context, table catalog.CategoryTable, id int64, data map[string]any) error

	GetCategory(ctx context.Context, id int64) (store.Category, error)
	ListCategories(ctx context.Context) ([]store.Category, error)
	SearchProducts(ctx context.Context, f store.ProductFilter) (*store.ProductPage, error)
	GetProduct(ctx context.Context, partNumber string) (store.Product, error)

	InsertDownload(ctx context.Context, d store.Download) (store.Download, error)
	ListDownloads(ctx context.Context) ([]store.Download, error)

	InsertAudit(ctx context.Context, rec store.AuditRecord) (store.AuditRecord, error)
	ListAudit(ctx context.Context, limit int) ([]store.AuditRecord, error)
	PurgeAuditBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ObjectStore holds download files and archived imports. *objstore.Client
// satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	URL(key string) string
}

// ImportRequest is one uploaded CSV.
type ImportRequest struct {
	FileName string
	Data     []byte

	// CategoryID selects the table for category imports. For generic
	// imports it is the category given to rows that name none.
	CategoryID *int64
}

// ImportSummary counts what an import did.
type ImportSummary struct {
	TotalRows int `json:"totalRows"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// ProcessingReport is the validation half of an import response.
type ProcessingReport struct {
	Success          bool                  `json:"success"`
	Errors           []importer.Diagnostic `json:"errors"`
	Warnings         []importer.Diagnostic `json:"warnings"`
	DetectedCategory string                `json:"detectedCategory,omitempty"`
}

// OperationError is a planned write that failed.
type OperationError struct {
	Row        int                    `json:"row"`
	PartNumber string                 `json:"part_number"`
	Type       importer.OperationType `json:"type"`
	Error      string                 `json:"error"`
}

// ImportReport is the response to an executed import.
type ImportReport struct {
	Success          bool             `json:"success"`
	Summary          ImportSummary    `json:"summary"`
	ProcessingResult ProcessingReport `json:"processingResult"`
	OperationErrors  []OperationError `json:"operationErrors"`
	PlanID           string           `json:"planId,omitempty"`
}

// Plan is a previewed import waiting for approval. Operations keep their
// Selected flags so a reviewer can toggle them before execution.
type Plan struct {
	ID               string                   `json:"id"`
	FileName         string                   `json:"fileName"`
	Target           importer.Target          `json:"target"`
	CategoryID       *int64                   `json:"categoryId,omitempty"`
	Columns          []string                 `json:"columns,omitempty"`
	TotalRows        int                      `json:"totalRows"`
	Summary          importer.Summary         `json:"summary"`
	ProcessingResult ProcessingReport         `json:"processingResult"`
	Operations       []importer.SyncOperation `json:"operations"`
	CreatedAt        time.Time                `json:"createdAt"`
	ExpiresAt        time.Time                `json:"expiresAt"`
}

// DownloadFile is one file of a download upload.
type DownloadFile struct {
	Title       string
	FileName    string
	ContentType string
	Data        []byte
	CategoryID  *int64
}

// DownloadFailure is a download file that could not be stored.
type DownloadFailure struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// DownloadResult reports a multi-file download upload.
type DownloadResult struct {
	Stored []store.Download   `json:"stored"`
	Failed []DownloadFailure `json:"failed"`
}
