package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/heuristics"
	"github.com/kirillkom/termlens/internal/core/ports"
)

const defaultStructuredSummary = "Document analysis completed successfully."

type AnalyzeUseCase struct {
	extractor  ports.TextExtractor
	summarizer ports.Summarizer
	parser     ports.AnalysisParser
	handoff    ports.HandoffStore
	events     ports.EventPublisher
	observer   ports.PipelineObserver

	now   func() time.Time
	newID func() string
}

// NewAnalyzeUseCase wires the pipeline. handoff, events and observer may be nil.
func NewAnalyzeUseCase(
	extractor ports.TextExtractor,
	summarizer ports.Summarizer,
	parser ports.AnalysisParser,
	handoff ports.HandoffStore,
	events ports.EventPublisher,
	observer ports.PipelineObserver,
) *AnalyzeUseCase {
	return &AnalyzeUseCase{
		extractor:  extractor,
		summarizer: summarizer,
		parser:     parser,
		handoff:    handoff,
		events:     events,
		observer:   observer,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (uc *AnalyzeUseCase) AnalyzeDocument(ctx context.Context, doc domain.UploadedDocument) (*domain.AnalysisReport, error) {
	if strings.TrimSpace(doc.Filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze document", errors.New("filename is required"))
	}
	if !domain.IsSupportedUpload(doc.Filename, doc.MimeType) {
		return nil, domain.WrapError(
			domain.ErrUnsupportedFileType,
			"analyze document",
			fmt.Errorf("%s (%s)", doc.Filename, doc.MimeType),
		)
	}

	var warnings []string
	extraction, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		slog.WarnContext(ctx, "extraction_failed", "file_name", doc.Filename, "mime_type", doc.MimeType, "error", err)
		warnings = append(warnings, extractionWarning(err))
		extraction = domain.ExtractionResult{Method: domain.ExtractionMethodNone, ElapsedMillis: extraction.ElapsedMillis}
	}
	uc.observeExtraction(extraction.Method, err == nil)

	return uc.run(ctx, pipelineInput{
		fileName:     doc.Filename,
		fileType:     doc.MimeType,
		analysisType: doc.AnalysisType,
		extraction:   extraction,
		warnings:     warnings,
	}), nil
}

// AnalyzeText runs the pipeline on text extracted by the caller. Without text the
// caller's own section and clause counts are used.
func (uc *AnalyzeUseCase) AnalyzeText(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	if strings.TrimSpace(req.FileName) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze text", errors.New("file_name is required"))
	}
	if req.ReportedSections < 0 || req.ReportedClauses < 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze text", errors.New("counts must not be negative"))
	}

	extraction := domain.ExtractionResult{Method: domain.ExtractionMethodNone}
	text := strings.TrimSpace(req.Text)
	if text != "" {
		extraction = domain.ExtractionResult{
			Text:       text,
			Confidence: clampConfidence(req.Confidence),
			Method:     domain.ExtractionMethodProvided,
			TextLength: len([]rune(text)),
		}
	}

	return uc.run(ctx, pipelineInput{
		fileName:         req.FileName,
		fileType:         req.FileType,
		analysisType:     req.AnalysisType,
		extraction:       extraction,
		reportedSections: req.ReportedSections,
		reportedClauses:  req.ReportedClauses,
	}), nil
}

// Park stores the report for one later chat turn and returns its token.
func (uc *AnalyzeUseCase) Park(ctx context.Context, report *domain.AnalysisReport) (string, error) {
	if report == nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "park report", errors.New("report is nil"))
	}
	if uc.handoff == nil {
		return "", domain.WrapError(domain.ErrTemporary, "park report", errors.New("handoff store is not configured"))
	}
	token := uc.newID()
	previous := report.HandoffToken
	report.HandoffToken = token
	if err := uc.handoff.Put(ctx, token, report); err != nil {
		report.HandoffToken = previous
		return "", fmt.Errorf("park report: %w", err)
	}
	return token, nil
}

type pipelineInput struct {
	fileName     string
	fileType     string
	analysisType string
	extraction   domain.ExtractionResult
	warnings     []string

	reportedSections int
	reportedClauses  int
}

func (uc *AnalyzeUseCase) run(ctx context.Context, in pipelineInput) *domain.AnalysisReport {
	text := in.extraction.Text
	annotation := heuristics.Annotate(text)

	sectionCount, clauseCount := len(annotation.Sections), len(annotation.HiddenClauses)
	if text == "" {
		sectionCount, clauseCount = in.reportedSections, in.reportedClauses
	}

	risk := heuristics.ScoreRisk(heuristics.RiskInput{
		HiddenClauseCount:    clauseCount,
		ExtractionConfidence: in.extraction.Confidence,
		TextLength:           in.extraction.TextLength,
		KeywordHits:          heuristics.KeywordHits(text),
	})

	raw, structured, status, warning := uc.summarize(ctx, domain.SummaryRequest{
		FileName:     in.fileName,
		FileType:     in.fileType,
		AnalysisType: in.analysisType,
		Text:         text,
		Confidence:   in.extraction.Confidence,
		SectionCount: sectionCount,
		ClauseCount:  clauseCount,
	})
	warnings := in.warnings
	if warning != "" {
		warnings = append(warnings, warning)
	}

	report := &domain.AnalysisReport{
		ID:           uc.newID(),
		FileName:     in.fileName,
		FileType:     in.fileType,
		AnalysisType: in.analysisType,
		Status:       status,
		RiskScore:    risk.Score,
		RiskLevel:    risk.Level,
		Risk:         risk,
		Summary:      narrativeSummary(in.extraction, sectionCount, clauseCount),
		Analysis:     raw,
		Structured:   structured,
		Sections:     annotation.Sections,
		Hidden:       annotation.HiddenClauses,
		Extraction:   in.extraction,
		Warnings:     warnings,
		CreatedAt:    uc.now().UTC(),
	}

	slog.InfoContext(ctx, "analysis_completed",
		"analysis_id", report.ID,
		"file_name", report.FileName,
		"status", string(report.Status),
		"risk_score", report.RiskScore,
		"risk_level", string(report.RiskLevel),
		"sections", len(report.Sections),
		"hidden_clauses", len(report.Hidden),
		"extraction_method", string(report.Extraction.Method),
	)
	if uc.observer != nil {
		uc.observer.ObserveAnalysis(report.Status, report.RiskLevel)
	}
	uc.publish(ctx, report)
	return report
}

// summarize never fails: any remote or parse failure yields the fallback analysis.
func (uc *AnalyzeUseCase) summarize(ctx context.Context, req domain.SummaryRequest) (string, domain.StructuredAnalysis, domain.AnalysisStatus, string) {
	if uc.summarizer == nil {
		return FallbackAnalysisText, FallbackStructuredAnalysis(), domain.AnalysisFallback, "remote analysis is not configured; showing the standard checklist"
	}

	raw, err := uc.summarizer.Summarize(ctx, req)
	if err != nil {
		slog.WarnContext(ctx, "summarizer_fallback", "file_name", req.FileName, "error", err)
		return FallbackAnalysisText, FallbackStructuredAnalysis(), domain.AnalysisFallback, "remote analysis is unavailable; showing the standard checklist"
	}

	structured := uc.parser.Parse(raw)
	if structured.IsEmpty() {
		slog.WarnContext(ctx, "summarizer_fallback", "file_name", req.FileName, "error", "no recognised headings in model output")
		return FallbackAnalysisText, FallbackStructuredAnalysis(), domain.AnalysisFallback, "remote analysis could not be read; showing the standard checklist"
	}
	if strings.TrimSpace(structured.Summary) == "" {
		structured.Summary = defaultStructuredSummary
	}
	return raw, structured, domain.AnalysisComplete, ""
}

func (uc *AnalyzeUseCase) publish(ctx context.Context, report *domain.AnalysisReport) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishAnalysisCompleted(ctx, domain.NewAnalysisEvent(report)); err != nil {
		slog.WarnContext(ctx, "analysis_event_publish_failed", "analysis_id", report.ID, "error", err)
	}
}

func (uc *AnalyzeUseCase) observeExtraction(method domain.ExtractionMethod, ok bool) {
	if uc.observer != nil {
		uc.observer.ObserveExtraction(method, ok)
	}
}

func narrativeSummary(extraction domain.ExtractionResult, sections, clauses int) string {
	if extraction.Text == "" {
		return "No document text was available, so this review is based on the file name and type alone. " +
			"It lists the terms that documents of this kind usually hide and what to check before signing."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Read %d characters of text with %s%% extraction confidence. ",
		extraction.TextLength, formatPercent(extraction.Confidence))
	fmt.Fprintf(&b, "Found %d tagged %s", sections, plural(sections, "section", "sections"))
	if clauses > 0 {
		fmt.Fprintf(&b, " and %d potentially concerning %s", clauses, plural(clauses, "clause", "clauses"))
	}
	b.WriteString(". The detailed analysis below covers key terms, hidden clauses and consumer protection issues.")
	return b.String()
}

func extractionWarning(err error) string {
	extractErr, ok := domain.AsExtractionError(err)
	if !ok {
		return "text extraction failed; the analysis is based on the file name only"
	}
	switch extractErr.Kind {
	case domain.ExtractionOCRUnavailable:
		return "image text recognition is unavailable; the analysis is based on the file name only"
	case domain.ExtractionNoText:
		return "no readable text was found in the document; the analysis is based on the file name only"
	default:
		return "the document could not be read; the analysis is based on the file name only"
	}
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	return min(c, 100)
}

func formatPercent(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
