package httpadapter

import (
	"context"
	"net/http"
	"testing"

	"github.com/kirillkom/termlens/internal/config"
	"github.com/kirillkom/termlens/internal/core/domain"
)

type analyzerFake struct {
	err     error
	gotDoc  domain.UploadedDocument
	gotText domain.AnalysisRequest
}

func (f *analyzerFake) AnalyzeDocument(_ context.Context, doc domain.UploadedDocument) (*domain.AnalysisReport, error) {
	f.gotDoc = doc
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AnalysisReport{ID: "an-1", FileName: doc.Filename, Status: domain.AnalysisComplete, RiskScore: 30, RiskLevel: domain.RiskLow}, nil
}

func (f *analyzerFake) AnalyzeText(_ context.Context, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	f.gotText = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AnalysisReport{ID: "an-2", FileName: req.FileName, Status: domain.AnalysisFallback, RiskScore: 50, RiskLevel: domain.RiskMedium}, nil
}

type handoffFake struct {
	err error
}

func (f handoffFake) Park(_ context.Context, report *domain.AnalysisReport) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	report.HandoffToken = "tok-1"
	return "tok-1", nil
}

type chatFake struct {
	got domain.ChatRequest
}

func (f *chatFake) Reply(_ context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	f.got = req
	if req.Message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", errString("message is required"))
	}
	return &domain.ChatReply{Response: "hello", Source: domain.ChatSourceRemote}, nil
}

type catalogFake struct{}

func (catalogFake) Products(c domain.ProductCategory) []domain.Product {
	all := []domain.Product{
		{Slug: "hdfc-regalia", Name: "HDFC Regalia", Category: domain.CategoryCreditCard},
		{Slug: "hdfc-home-loan", Name: "HDFC Home Loan", Category: domain.CategoryLoan},
	}
	if c == "" {
		return all
	}
	var out []domain.Product
	for _, p := range all {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

func (catalogFake) Product(slug string) (domain.Product, bool) {
	if slug == "hdfc-regalia" {
		return domain.Product{Slug: slug, Name: "HDFC Regalia"}, true
	}
	return domain.Product{}, false
}

type rendererFake struct{}

func (rendererFake) Render(*domain.AnalysisReport) ([]byte, error) { return []byte("PK-xlsx"), nil }
func (rendererFake) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type errString string

func (e errString) Error() string { return string(e) }

func defaultServices() Services {
	return Services{
		Analyzer: &analyzerFake{},
		Handoff:  handoffFake{},
		Chat:     &chatFake{},
		Catalog:  catalogFake{},
		Renderer: rendererFake{},
	}
}

func newTestHandler(t *testing.T, cfg config.Config, svc Services) http.Handler {
	t.Helper()
	router, err := NewRouter(cfg, svc)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return router.Handler()
}
