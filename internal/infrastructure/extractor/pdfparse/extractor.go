package pdfparse

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/termlens/internal/core/domain"
)

const parseConfidence = 95

// Extractor reads page text through a real PDF parser. Enabled with PDF_EXTRACTION_MODE=parse.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, doc domain.UploadedDocument) (result domain.ExtractionResult, err error) {
	result.Method = domain.ExtractionMethodPDFParse

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewExtractionError(domain.ExtractionUnreadable, doc.Filename, fmt.Errorf("pdf parser panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return result, domain.NewExtractionError(domain.ExtractionUnreadable, doc.Filename, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("pdf_page_skipped", "file_name", doc.Filename, "page", i, "error", err)
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return result, domain.NewExtractionError(domain.ExtractionNoText, doc.Filename, nil)
	}
	result.Text = text
	result.Confidence = parseConfidence
	result.TextLength = utf8.RuneCountInString(text)
	return result, nil
}
