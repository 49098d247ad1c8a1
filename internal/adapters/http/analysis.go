package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/kirillkom/termlens/internal/core/domain"
)

// Multipart framing allowance on top of the file size cap.
const multipartOverhead = 1 << 20

type analysisRequestBody struct {
	FileName           string  `json:"file_name"`
	FileType           string  `json:"file_type"`
	AnalysisType       string  `json:"analysis_type"`
	ExtractedText      string  `json:"extracted_text"`
	OCRConfidence      float64 `json:"ocr_confidence"`
	IdentifiedSections int     `json:"identified_sections"`
	HiddenClausesCount int     `json:"hidden_clauses_count"`
}

type reportParams struct {
	Format  *string
	Handoff *bool
}

func (rt *Router) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	params, err := bindReportParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := rt.cfg.MaxUploadBytes
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, tooLargeMessage(limit))
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	if limit > 0 && header.Size > limit {
		writeError(w, http.StatusRequestEntityTooLarge, tooLargeMessage(limit))
		return
	}
	reader := io.Reader(file)
	if limit > 0 {
		reader = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	if limit > 0 && int64(len(data)) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, tooLargeMessage(limit))
		return
	}

	report, err := rt.svc.Analyzer.AnalyzeDocument(r.Context(), domain.UploadedDocument{
		Filename:     header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		AnalysisType: strings.TrimSpace(r.FormValue("analysis_type")),
		Data:         data,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rt.writeReport(w, r, report, params)
}

func (rt *Router) analyzeText(w http.ResponseWriter, r *http.Request) {
	params, err := bindReportParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	}

	var body analysisRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, tooLargeMessage(rt.cfg.MaxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	report, err := rt.svc.Analyzer.AnalyzeText(r.Context(), domain.AnalysisRequest{
		FileName:         body.FileName,
		FileType:         body.FileType,
		AnalysisType:     body.AnalysisType,
		Text:             body.ExtractedText,
		Confidence:       body.OCRConfidence,
		ReportedSections: body.IdentifiedSections,
		ReportedClauses:  body.HiddenClausesCount,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rt.writeReport(w, r, report, params)
}

func (rt *Router) writeReport(w http.ResponseWriter, r *http.Request, report *domain.AnalysisReport, params reportParams) {
	if params.Handoff != nil && *params.Handoff {
		rt.park(r, report)
	}

	if params.Format == nil || *params.Format == "json" {
		writeJSON(w, http.StatusOK, report)
		return
	}
	if rt.svc.Renderer == nil {
		writeError(w, http.StatusBadRequest, "spreadsheet output is not available")
		return
	}
	data, err := rt.svc.Renderer.Render(report)
	if err != nil {
		slog.ErrorContext(r.Context(), "report_render_failed", "analysis_id", report.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", rt.svc.Renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFileName(report.FileName)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// park never fails the request; a failed handoff becomes a report warning.
func (rt *Router) park(r *http.Request, report *domain.AnalysisReport) {
	if rt.svc.Handoff == nil {
		report.Warnings = append(report.Warnings, "chat handoff is not configured")
		return
	}
	if _, err := rt.svc.Handoff.Park(r.Context(), report); err != nil {
		slog.WarnContext(r.Context(), "report_handoff_failed", "analysis_id", report.ID, "error", err)
		report.Warnings = append(report.Warnings, "the report could not be handed off to chat")
	}
}

func bindReportParams(r *http.Request) (reportParams, error) {
	var params reportParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "format", query, &params.Format); err != nil {
		return params, fmt.Errorf("invalid format parameter: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "handoff", query, &params.Handoff); err != nil {
		return params, fmt.Errorf("invalid handoff parameter: %w", err)
	}
	if params.Format != nil && *params.Format != "json" && *params.Format != "xlsx" {
		return params, fmt.Errorf("unsupported format %q", *params.Format)
	}
	return params, nil
}

func reportFileName(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "analysis"
	}
	return base + "-analysis.xlsx"
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("file exceeds the %d byte upload limit", limit)
}
