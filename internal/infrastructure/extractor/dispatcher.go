package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/ports"
)

// Dispatcher routes an upload to the extractor for its MIME type, or its file
// extension when the MIME type is generic, and times the call.
type Dispatcher struct {
	pdf   ports.TextExtractor
	image ports.TextExtractor
	text  ports.TextExtractor
	now   func() time.Time
}

func NewDispatcher(pdf, image, text ports.TextExtractor) *Dispatcher {
	return &Dispatcher{pdf: pdf, image: image, text: text, now: time.Now}
}

func (d *Dispatcher) Extract(ctx context.Context, doc domain.UploadedDocument) (domain.ExtractionResult, error) {
	start := d.now()
	result, err := d.route(doc).Extract(ctx, doc)
	result.ElapsedMillis = d.now().Sub(start).Milliseconds()
	if err != nil {
		result.Text = ""
		result.Confidence = 0
		result.TextLength = 0
	}
	return result, err
}

func (d *Dispatcher) route(doc domain.UploadedDocument) ports.TextExtractor {
	mt := strings.ToLower(doc.MimeType)
	switch {
	case strings.Contains(mt, "pdf"):
		return d.pdf
	case strings.Contains(mt, "image"):
		return d.image
	}
	switch doc.Extension() {
	case ".pdf":
		return d.pdf
	case ".jpg", ".jpeg", ".png":
		return d.image
	default:
		return d.text
	}
}
