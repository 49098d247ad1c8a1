package ports

import (
	"context"

	"github.com/kirillkom/termlens/internal/core/domain"
)

// DocumentAnalyzer is the inbound contract for the analysis pipeline.
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, doc domain.UploadedDocument) (*domain.AnalysisReport, error)
	AnalyzeText(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisReport, error)
}

// ReportHandoff parks a finished report for a later chat turn.
type ReportHandoff interface {
	Park(ctx context.Context, report *domain.AnalysisReport) (string, error)
}

// ChatService answers one conversation turn.
type ChatService interface {
	Reply(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)
}

// ProductCatalog is the read-only view of the knowledge base exposed to clients.
type ProductCatalog interface {
	Products(category domain.ProductCategory) []domain.Product
	Product(slug string) (domain.Product, bool)
}
