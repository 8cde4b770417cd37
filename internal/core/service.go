package core

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/virex/internal/plancache"
)

var (
	// ErrNoFile is returned when a request carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrEmptyFile is returned for zero-byte uploads.
	ErrEmptyFile = errors.New("empty file")

	// ErrNotCSV is returned when an import file is not a .csv.
	ErrNotCSV = errors.New("not a csv file: only .csv files are accepted")

	// ErrFileTooLarge is returned when a file exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnknownCategory is returned when a category has no category table.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrPlanNotFound is returned for missing or expired preview plans.
	ErrPlanNotFound = plancache.ErrNotFound

	// ErrUnknownOperation is returned when a selection names an operation
	// the plan does not contain.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrStorageDisabled is returned by operations that need object storage
	// when no bucket is configured.
	ErrStorageDisabled = errors.New("object storage is not configured")
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Store   Store
	Plans   plancache.Cache
	Objects ObjectStore // nil disables downloads and import archiving

	Limiter          *ImportLimiter
	ImportTimeout    time.Duration
	MaxFileSize      int64
	MaxDownloadSize  int64
	StrictValidation bool
	ArchiveUploads   bool
	PlanTTL          time.Duration

	// Now is the clock; tests replace it.
	Now func() time.Time
}

// Service provides the catalog import business logic.
type Service struct {
	store   Store
	plans   plancache.Cache
	objects ObjectStore
	limiter *ImportLimiter

	importTimeout   time.Duration
	maxFileSize     int64
	maxDownloadSize int64
	strict          bool
	archive         bool
	planTTL         time.Duration
	now             func() time.Time
}

// NewService creates a Service from opts.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("core: store is required")
	}

	s := &Service{
		store:           opts.Store,
		plans:           opts.Plans,
		objects:         opts.Objects,
		limiter:         opts.Limiter,
		importTimeout:   opts.ImportTimeout,
		maxFileSize:     opts.MaxFileSize,
		maxDownloadSize: opts.MaxDownloadSize,
		strict:          opts.StrictValidation,
		archive:         opts.ArchiveUploads && opts.Objects != nil,
		planTTL:         opts.PlanTTL,
		now:             opts.Now,
	}

	if s.plans == nil {
		s.plans = plancache.NewMemory()
	}
	if s.limiter == nil {
		s.limiter = NewImportLimiter(DefaultMaxConcurrentImports, DefaultMaxWaitTime)
	}
	if s.importTimeout <= 0 {
		s.importTimeout = 10 * time.Minute
	}
	if s.maxFileSize <= 0 {
		s.maxFileSize = 20 << 20
	}
	if s.maxDownloadSize <= 0 {
		s.maxDownloadSize = 200 << 20
	}
	if s.planTTL <= 0 {
		s.planTTL = 30 * time.Minute
	}
	if s.now == nil {
		s.now = time.Now
	}

	if opts.ArchiveUploads && opts.Objects == nil {
		slog.Warn("import archiving requested without object storage; archiving disabled")
	}

	return s, nil
}

// Limiter returns the import limiter, for status reporting and shutdown drain.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// StorageEnabled reports whether object storage is configured.
func (s *Service) StorageEnabled() bool {
	return s.objects != nil
}
