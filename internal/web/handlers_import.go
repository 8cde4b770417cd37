package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/virex/internal/core"
	"github.com/JonMunkholm/virex/internal/logging"
	"github.com/JonMunkholm/virex/internal/web/templates"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	// maxSelectionBody bounds the JSON body of a plan execution.
	maxSelectionBody = 1 << 20

	maxAuditEntries = 500
)

type importFunc func(context.Context, core.ImportRequest) (*core.ImportReport, error)

type previewFunc func(context.Context, core.ImportRequest) (*core.Plan, error)

func (s *Server) handleImportGeneric(w http.ResponseWriter, r *http.Request) {
	s.runImport(w, r, s.service.ImportGeneric)
}

func (s *Server) handleImportCategory(w http.ResponseWriter, r *http.Request) {
	s.runImport(w, r, s.service.ImportCategory)
}

func (s *Server) handlePreviewGeneric(w http.ResponseWriter, r *http.Request) {
	s.runPreview(w, r, s.service.PreviewGeneric)
}

func (s *Server) handlePreviewCategory(w http.ResponseWriter, r *http.Request) {
	s.runPreview(w, r, s.service.PreviewCategory)
}

// runImport parses the upload and executes it. Row and operation problems
// come back in a 200 report with success false.
func (s *Server) runImport(w http.ResponseWriter, r *http.Request, run importFunc) {
	req, err := s.readImportRequest(w, r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	report, err := run(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.writeReport(w, r, report)
}

func (s *Server) runPreview(w http.ResponseWriter, r *http.Request, run previewFunc) {
	req, err := s.readImportRequest(w, r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	plan, err := run(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, report *core.ImportReport) {
	if !isHTMX(r) {
		writeJSON(w, http.StatusOK, report)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ImportSummary(report).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render import summary", "error", err)
	}
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.service.GetPlan(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// executeRequest is the body of a plan execution. Selections maps operation
// ids to their new selected flag; an empty body executes the plan as planned.
type executeRequest struct {
	Selections map[string]bool `json:"selections"`
}

func (s *Server) handleExecutePlan(w http.ResponseWriter, r *http.Request) {
	var body executeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSelectionBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		respondServiceError(w, r, fmt.Errorf("%w: body: %v", errBadRequest, err))
		return
	}

	report, err := s.service.ExecutePlan(WithRequestMetadata(r.Context(), r), chi.URLParam(r, "planID"), body.Selections)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.writeReport(w, r, report)
}

func (s *Server) handlePlanReport(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	data, err := s.service.ExportPlanXLSX(r.Context(), planID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	attachment(w, xlsxContentType, fmt.Sprintf("import-plan-%s.xlsx", planID))
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Warn("write plan report", "error", err)
	}
}

func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseOptionalID("categoryId", r.URL.Query().Get("categoryId"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	tmpl, err := s.service.Template(r.Context(), categoryID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	attachment(w, "text/csv; charset=utf-8", tmpl.FileName)
	if _, err := io.WriteString(w, tmpl.CSV()); err != nil {
		logging.FromContext(r.Context()).Warn("write template", "error", err)
	}
}

func (s *Server) handleRecentAudit(w http.ResponseWriter, r *http.Request) {
	limit := min(parseIntParam(r, "limit", 100), maxAuditEntries)
	entries, err := s.service.RecentAudit(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
