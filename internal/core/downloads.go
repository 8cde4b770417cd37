package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/virex/internal/logging"
	"github.com/JonMunkholm/virex/internal/objstore"
	"github.com/JonMunkholm/virex/internal/observability"
	"github.com/JonMunkholm/virex/internal/store"
)

// UploadDownloads stores support-center files one at a time, in order. Each
// file goes to object storage and then into the downloads table. A failed
// file is reported and the rest still run.
func (s *Service) UploadDownloads(ctx context.Context, files []DownloadFile) (*DownloadResult, error) {
	if s.objects == nil {
		return nil, ErrStorageDisabled
	}
	if len(files) == 0 {
		return nil, ErrNoFile
	}

	result := &DownloadResult{Stored: []store.Download{}, Failed: []DownloadFailure{}}
	for _, file := range files {
		d, err := s.storeDownload(ctx, file)
		if err != nil {
			observability.DownloadsStoredTotal.WithLabelValues("failed").Inc()
			logging.FromContext(ctx).Warn("download upload failed",
				slog.String("file", file.FileName),
				slog.Any("error", err),
			)
			result.Failed = append(result.Failed, DownloadFailure{FileName: file.FileName, Error: FormatUserError(err)})
			continue
		}
		observability.DownloadsStoredTotal.WithLabelValues("stored").Inc()
		result.Stored = append(result.Stored, d)
	}

	if len(result.Stored) > 0 {
		names := make([]string, len(result.Stored))
		for i, d := range result.Stored {
			names[i] = d.FileName
		}
		s.LogAudit(ctx, AuditLogParams{
			Action:       ActionDownloadUpload,
			Target:       "downloads",
			FileName:     strings.Join(names, ", "),
			RowsAffected: len(result.Stored),
			Details:      map[string]any{"failed": len(result.Failed)},
		})
	}
	return result, nil
}

func (s *Service) storeDownload(ctx context.Context, file DownloadFile) (store.Download, error) {
	if len(file.Data) == 0 {
		return store.Download{}, ErrEmptyFile
	}
	if int64(len(file.Data)) > s.maxDownloadSize {
		return store.Download{}, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrFileTooLarge, len(file.Data), s.maxDownloadSize)
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	title := strings.TrimSpace(file.Title)
	if title == "" {
		title = file.FileName
	}

	key := objstore.ObjectKey("downloads", uuid.NewString(), file.FileName, s.now())
	if err := s.objects.Put(ctx, key, file.Data, contentType); err != nil {
		return store.Download{}, fmt.Errorf("store object: %w", err)
	}

	d, err := s.store.InsertDownload(ctx, store.Download{
		Title:       title,
		FileName:    file.FileName,
		ObjectKey:   key,
		URL:         s.objects.URL(key),
		ContentType: contentType,
		SizeBytes:   int64(len(file.Data)),
		CategoryID:  file.CategoryID,
	})
	if err != nil {
		return store.Download{}, fmt.Errorf("record download: %w", err)
	}
	return d, nil
}
