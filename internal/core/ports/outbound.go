package ports

import (
	"context"

	"github.com/kirillkom/termlens/internal/core/domain"
)

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, doc domain.UploadedDocument) (domain.ExtractionResult, error)
}

// OCREngine recognises text in an image. Confidence is in [0, 100].
type OCREngine interface {
	Recognize(ctx context.Context, image []byte, ext string) (text string, confidence float64, err error)
}

// CompletionRequest is one call to a chat-style language model.
type CompletionRequest struct {
	System      string
	Messages    []domain.ChatTurn
	Temperature float64
	MaxTokens   int
}

// ChatModel is a remote language model.
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Summarizer produces the raw analysis text for a document.
type Summarizer interface {
	Summarize(ctx context.Context, req domain.SummaryRequest) (string, error)
}

// AnalysisParser maps raw model output onto the structured buckets.
type AnalysisParser interface {
	Parse(raw string) domain.StructuredAnalysis
}

// HandoffStore keeps reports for exactly one read.
type HandoffStore interface {
	Put(ctx context.Context, token string, report *domain.AnalysisReport) error
	Take(ctx context.Context, token string) (*domain.AnalysisReport, error)
}

// EventPublisher announces finished analyses.
type EventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, event domain.AnalysisEvent) error
}

// KnowledgeBase is the immutable product and advice catalog.
type KnowledgeBase interface {
	ProductCatalog
	Search(query string, history []domain.ChatTurn) []domain.ProductMatch
	BrowseCategory(query string) (domain.ProductCategory, bool)
	CategoryLabel(category domain.ProductCategory) string
	Advice(query string) (string, bool)
}

// ReportRenderer renders a report into a downloadable file.
type ReportRenderer interface {
	Render(report *domain.AnalysisReport) ([]byte, error)
	ContentType() string
}

// PipelineObserver receives pipeline outcomes for metrics.
type PipelineObserver interface {
	ObserveExtraction(method domain.ExtractionMethod, ok bool)
	ObserveAnalysis(status domain.AnalysisStatus, level domain.RiskLevel)
	ObserveChat(source domain.ChatSource)
}
