package web

// handlers_common.go holds request parsing shared across handlers.

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/JonMunkholm/virex/internal/core"
)

const (
	// multipartOverhead allows for boundaries and form fields around the file.
	multipartOverhead = 1 << 20

	// multipartMemory is how much of a form is held in memory before spilling
	// to temporary files.
	multipartMemory = 32 << 20
)

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseOptionalID parses a positive id. An empty value returns nil.
func parseOptionalID(name, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive integer (got %q)", errBadRequest, name, raw)
	}
	return &id, nil
}

// parseMultipart bounds the body to limit bytes of file content and parses it.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, limit)
		}
		return fmt.Errorf("%w: %v", errBadForm, err)
	}
	return nil
}

// readImportRequest reads the "file" and optional "categoryId" fields of an
// import upload.
func (s *Server) readImportRequest(w http.ResponseWriter, r *http.Request) (core.ImportRequest, error) {
	var req core.ImportRequest
	if err := parseMultipart(w, r, s.cfg.Import.MaxFileSize); err != nil {
		return req, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return req, core.ErrNoFile
	}
	defer file.Close()

	if !strings.EqualFold(path.Ext(header.Filename), ".csv") {
		return req, core.ErrNotCSV
	}

	data, err := readFile(file)
	if err != nil {
		return req, err
	}

	categoryID, err := parseOptionalID("categoryId", r.FormValue("categoryId"))
	if err != nil {
		return req, err
	}

	return core.ImportRequest{FileName: header.Filename, Data: data, CategoryID: categoryID}, nil
}

func readFile(file multipart.File) ([]byte, error) {
	data, err := readAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, core.ErrEmptyFile
	}
	return data, nil
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadForm, err)
	}
	return data, nil
}
