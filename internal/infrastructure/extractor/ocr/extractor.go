package ocr

import (
	"context"
	"unicode/utf8"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/ports"
)

type Extractor struct {
	engine ports.OCREngine
}

func NewExtractor(engine ports.OCREngine) *Extractor {
	return &Extractor{engine: engine}
}

func (e *Extractor) Extract(ctx context.Context, doc domain.UploadedDocument) (domain.ExtractionResult, error) {
	result := domain.ExtractionResult{Method: domain.ExtractionMethodOCR}
	if e.engine == nil {
		return result, domain.NewExtractionError(domain.ExtractionOCRUnavailable, doc.Filename, nil)
	}

	text, confidence, err := e.engine.Recognize(ctx, doc.Data, doc.Extension())
	if err != nil {
		return result, domain.NewExtractionError(domain.ExtractionOCRUnavailable, doc.Filename, err)
	}
	result.Text = text
	result.Confidence = min(max(confidence, 0), 100)
	result.TextLength = utf8.RuneCountInString(text)
	return result, nil
}
