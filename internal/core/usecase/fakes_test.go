package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/ports"
)

type extractorFake struct {
	result domain.ExtractionResult
	err    error
}

func (f *extractorFake) Extract(context.Context, domain.UploadedDocument) (domain.ExtractionResult, error) {
	return f.result, f.err
}

type summarizerFake struct {
	raw string
	err error
	got []domain.SummaryRequest
}

func (f *summarizerFake) Summarize(_ context.Context, req domain.SummaryRequest) (string, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return "", f.err
	}
	return f.raw, nil
}

type parserFake struct {
	out  domain.StructuredAnalysis
	seen []string
}

func (f *parserFake) Parse(raw string) domain.StructuredAnalysis {
	f.seen = append(f.seen, raw)
	return f.out
}

type handoffFake struct {
	mu      sync.Mutex
	reports map[string]*domain.AnalysisReport
	putErr  error
}

func newHandoffFake() *handoffFake {
	return &handoffFake{reports: map[string]*domain.AnalysisReport{}}
}

func (f *handoffFake) Put(_ context.Context, token string, report *domain.AnalysisReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	stored := *report
	f.reports[token] = &stored
	return nil
}

func (f *handoffFake) Take(_ context.Context, token string) (*domain.AnalysisReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[token]
	if !ok {
		return nil, domain.WrapError(domain.ErrHandoffNotFound, "take handoff", fmt.Errorf("token %q", token))
	}
	delete(f.reports, token)
	return report, nil
}

type publisherFake struct {
	events []domain.AnalysisEvent
	err    error
}

func (f *publisherFake) PublishAnalysisCompleted(_ context.Context, event domain.AnalysisEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type observerFake struct {
	extractions []bool
	analyses    []domain.AnalysisStatus
	chats       []domain.ChatSource
}

func (f *observerFake) ObserveExtraction(_ domain.ExtractionMethod, ok bool) {
	f.extractions = append(f.extractions, ok)
}

func (f *observerFake) ObserveAnalysis(status domain.AnalysisStatus, _ domain.RiskLevel) {
	f.analyses = append(f.analyses, status)
}

func (f *observerFake) ObserveChat(source domain.ChatSource) {
	f.chats = append(f.chats, source)
}

type knowledgeFake struct {
	matches  []domain.ProductMatch
	category domain.ProductCategory
	browse   bool
	products []domain.Product
	advice   string
}

func (f *knowledgeFake) Products(domain.ProductCategory) []domain.Product { return f.products }

func (f *knowledgeFake) Product(slug string) (domain.Product, bool) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (f *knowledgeFake) Search(string, []domain.ChatTurn) []domain.ProductMatch { return f.matches }

func (f *knowledgeFake) BrowseCategory(string) (domain.ProductCategory, bool) {
	return f.category, f.browse
}

func (f *knowledgeFake) CategoryLabel(domain.ProductCategory) string { return "Loans" }

func (f *knowledgeFake) Advice(string) (string, bool) { return f.advice, f.advice != "" }

type chatModelFake struct {
	out string
	err error
	got []ports.CompletionRequest
}

func (f *chatModelFake) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}
