package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/virex/internal/core"
	"github.com/JonMunkholm/virex/internal/store"
)

// maxDownloadFiles bounds how many files one download upload may carry.
const maxDownloadFiles = 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearchProducts serves GET /api/products?q=&category_id=&page=&page_size=.
func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseOptionalID("category_id", r.URL.Query().Get("category_id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	page, err := s.service.SearchProducts(r.Context(), store.ProductFilter{
		Query:      strings.TrimSpace(r.URL.Query().Get("q")),
		CategoryID: categoryID,
		Page:       parseIntParam(r, "page", 1),
		PageSize:   parseIntParam(r, "page_size", core.DefaultPageSize),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.service.GetProduct(r.Context(), chi.URLParam(r, "partNumber"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.service.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleListDownloads(w http.ResponseWriter, r *http.Request) {
	downloads, err := s.service.ListDownloads(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"downloads": downloads})
}

// handleUploadDownloads stores the "files" of a multipart form. An optional
// "categoryId" applies to every file, and "title" fields pair with files by
// position.
func (s *Server) handleUploadDownloads(w http.ResponseWriter, r *http.Request) {
	if !s.service.StorageEnabled() {
		respondServiceError(w, r, core.ErrStorageDisabled)
		return
	}
	if err := parseMultipart(w, r, s.cfg.Import.MaxDownloadSize); err != nil {
		respondServiceError(w, r, err)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["files[]"]
	}
	if len(headers) == 0 {
		respondServiceError(w, r, core.ErrNoFile)
		return
	}
	if len(headers) > maxDownloadFiles {
		respondServiceError(w, r, fmt.Errorf("%w: at most %d files per upload", errBadForm, maxDownloadFiles))
		return
	}

	categoryID, err := parseOptionalID("categoryId", r.FormValue("categoryId"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	titles := r.MultipartForm.Value["title"]

	files := make([]core.DownloadFile, 0, len(headers))
	for i, h := range headers {
		f, err := h.Open()
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		data, err := readAll(f)
		f.Close()
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		file := core.DownloadFile{
			FileName:    h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Data:        data,
			CategoryID:  categoryID,
		}
		if i < len(titles) {
			file.Title = titles[i]
		}
		files = append(files, file)
	}

	result, err := s.service.UploadDownloads(WithRequestMetadata(r.Context(), r), files)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
