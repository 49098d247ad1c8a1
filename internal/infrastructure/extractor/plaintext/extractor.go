package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/termlens/internal/core/domain"
)

const directConfidence = 100

// Extractor reads the upload as UTF-8. Invalid sequences are replaced, not rejected,
// so binary office formats degrade to noisy text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, doc domain.UploadedDocument) (domain.ExtractionResult, error) {
	raw := doc.Data
	text := string(raw)
	if !utf8.Valid(raw) {
		text = strings.ToValidUTF8(text, "�")
	}
	text = strings.TrimSpace(text)

	return domain.ExtractionResult{
		Text:       text,
		Confidence: directConfidence,
		Method:     domain.ExtractionMethodDirect,
		TextLength: utf8.RuneCountInString(text),
	}, nil
}
