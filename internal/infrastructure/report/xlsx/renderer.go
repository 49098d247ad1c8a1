package xlsx

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/termlens/internal/core/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetSummary  = "Summary"
	SheetSections = "Sections"
	SheetClauses  = "Hidden Clauses"
	SheetFindings = "Findings"

	maxCellRunes = 32767
)

var columnWidths = []struct {
	sheet, from, to string
	width           float64
}{
	{SheetSummary, "A", "A", 22},
	{SheetSummary, "B", "B", 80},
	{SheetSections, "A", "A", 24},
	{SheetSections, "B", "B", 100},
	{SheetClauses, "A", "B", 28},
	{SheetClauses, "C", "C", 100},
	{SheetFindings, "A", "A", 20},
	{SheetFindings, "B", "B", 80},
}

// Renderer writes an analysis report as a workbook.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

func (r *Renderer) ContentType() string { return ContentType }

func (r *Renderer) Render(report *domain.AnalysisReport) ([]byte, error) {
	if report == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "render xlsx", fmt.Errorf("report is nil"))
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{SheetSections, SheetClauses, SheetFindings} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w := &sheetWriter{f: f}
	w.summary(report)
	w.sections(report.Sections)
	w.clauses(report.Hidden)
	w.findings(report.Structured)
	if w.err != nil {
		return nil, fmt.Errorf("write xlsx cells: %w", w.err)
	}

	for _, c := range columnWidths {
		w.width(c.sheet, c.from, c.to, c.width)
	}
	if w.err != nil {
		return nil, fmt.Errorf("set xlsx column widths: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first cell error so the render steps stay linear.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) width(sheet, from, to string, width float64) {
	if w.err != nil {
		return
	}
	if err := w.f.SetColWidth(sheet, from, to, width); err != nil {
		w.err = fmt.Errorf("%s columns %s:%s: %w", sheet, from, to, err)
	}
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			v = clip(s)
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellValue(sheet, cell, v); err != nil {
			w.err = err
			return
		}
	}
}

func (w *sheetWriter) summary(report *domain.AnalysisReport) {
	rows := [][]any{
		{"Field", "Value"},
		{"File", report.FileName},
		{"File type", report.FileType},
		{"Status", string(report.Status)},
		{"Risk score", report.RiskScore},
		{"Risk level", string(report.RiskLevel)},
		{"Summary", report.Summary},
		{"Overview", report.Structured.Summary},
		{"Extraction method", string(report.Extraction.Method)},
		{"Extraction confidence", report.Extraction.Confidence},
		{"Text length", report.Extraction.TextLength},
		{"Analysed at", report.CreatedAt.UTC().Format(time.RFC3339)},
	}
	for i, values := range rows {
		w.row(SheetSummary, i+1, values...)
	}
	next := len(rows) + 1
	for _, warning := range report.Warnings {
		w.row(SheetSummary, next, "Warning", warning)
		next++
	}
}

func (w *sheetWriter) sections(sections []domain.DocumentSection) {
	w.row(SheetSections, 1, "Label", "Excerpt", "Confidence")
	for i, s := range sections {
		w.row(SheetSections, i+2, s.Label, s.Excerpt, s.Confidence)
	}
}

func (w *sheetWriter) clauses(clauses []domain.HiddenClauseCandidate) {
	w.row(SheetClauses, 1, "Pattern", "Match", "Excerpt")
	for i, c := range clauses {
		w.row(SheetClauses, i+2, c.Pattern, c.Match, c.Excerpt)
	}
}

func (w *sheetWriter) findings(a domain.StructuredAnalysis) {
	w.row(SheetFindings, 1, "Category", "Item")
	row := 2
	for _, bucket := range []struct {
		name  string
		items []string
	}{
		{"Key point", a.KeyPoints},
		{"Risk factor", a.RiskFactors},
		{"Benefit", a.Benefits},
		{"Hidden clause", a.HiddenClauses},
		{"Recommendation", a.Recommendations},
	} {
		for _, item := range bucket.items {
			w.row(SheetFindings, row, bucket.name, item)
			row++
		}
	}
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxCellRunes {
		return s
	}
	return string(r[:maxCellRunes])
}
