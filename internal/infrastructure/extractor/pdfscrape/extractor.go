// Package pdfscrape pulls printable runs out of PDF content streams without
// parsing the document structure. Compressed streams yield nothing useful, so
// results on real-world PDFs are often poor.
package pdfscrape

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/termlens/internal/core/domain"
)

const (
	scrapeConfidence = 95
	minFragmentLen   = 10
)

var (
	streamPattern    = regexp.MustCompile(`(?s)stream\s*(.*?)\s*endstream`)
	nonPrintableByte = regexp.MustCompile(`[^\x20-\x7E]`)
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, doc domain.UploadedDocument) (domain.ExtractionResult, error) {
	text := Scrape(doc.Data)
	if text == "" {
		return domain.ExtractionResult{Method: domain.ExtractionMethodPDF},
			domain.NewExtractionError(domain.ExtractionNoText, doc.Filename, nil)
	}
	return domain.ExtractionResult{
		Text:       text,
		Confidence: scrapeConfidence,
		Method:     domain.ExtractionMethodPDF,
		TextLength: utf8.RuneCountInString(text),
	}, nil
}

// Scrape joins the printable content of every stream body longer than ten characters.
func Scrape(data []byte) string {
	decoded := strings.ToValidUTF8(string(data), "�")

	var fragments []string
	for _, m := range streamPattern.FindAllStringSubmatch(decoded, -1) {
		readable := strings.TrimSpace(nonPrintableByte.ReplaceAllString(m[1], " "))
		if len(readable) > minFragmentLen {
			fragments = append(fragments, readable)
		}
	}
	return strings.Join(fragments, " ")
}
