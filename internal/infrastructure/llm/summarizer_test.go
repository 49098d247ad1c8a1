package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/ports"
	"github.com/kirillkom/termlens/internal/infrastructure/resilience"
)

type fakeModel struct {
	calls    int
	captured ports.CompletionRequest
	out      string
	err      error
	block    bool
}

func (f *fakeModel) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	f.calls++
	f.captured = req
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.out, f.err
}

func TestSummarizeTruncatesTextAndSetsLimits(t *testing.T) {
	model := &fakeModel{out: "## Overview\nok"}
	s := NewSummarizer(model, false)

	text := strings.Repeat("x", 9000)
	_, err := s.Summarize(context.Background(), domain.SummaryRequest{
		FileName:     "card.pdf",
		FileType:     "application/pdf",
		Text:         text,
		Confidence:   95,
		SectionCount: 4,
		ClauseCount:  2,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if strings.Contains(model.captured.System, strings.Repeat("x", 8001)) {
		t.Fatalf("expected document text truncated to 8000 chars")
	}
	if !strings.Contains(model.captured.System, strings.Repeat("x", 8000)) {
		t.Fatalf("expected 8000 chars of document text in system prompt")
	}
	if model.captured.Temperature != 0.3 || model.captured.MaxTokens != 2500 {
		t.Fatalf("unexpected limits %+v", model.captured)
	}
	user := model.captured.Messages[0].Content
	if !strings.Contains(user, "95% confidence") || !strings.Contains(user, "4 sections") || !strings.Contains(user, "2 possible hidden clauses") {
		t.Fatalf("unexpected user prompt %q", user)
	}
}

func TestSummarizeWithoutTextUsesFileNameOnly(t *testing.T) {
	model := &fakeModel{out: "general advice"}
	s := NewSummarizer(model, false)

	_, err := s.Summarize(context.Background(), domain.SummaryRequest{FileName: "policy.png", FileType: "image/png"})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if strings.Contains(model.captured.System, "Document text") {
		t.Fatalf("expected no document text in system prompt")
	}
	if !strings.Contains(model.captured.Messages[0].Content, "image/png") {
		t.Fatalf("expected file type in prompt, got %q", model.captured.Messages[0].Content)
	}
}

func TestSummarizeStructuredModeAsksForJSON(t *testing.T) {
	model := &fakeModel{out: "{}"}
	_, _ = NewSummarizer(model, true).Summarize(context.Background(), domain.SummaryRequest{FileName: "a.txt"})
	if !strings.Contains(model.captured.System, "JSON Schema") {
		t.Fatalf("expected schema in system prompt")
	}
}

func TestSummarizeEmptyOutput(t *testing.T) {
	_, err := NewSummarizer(&fakeModel{out: "  "}, false).Summarize(context.Background(), domain.SummaryRequest{})
	if !errors.Is(err, ErrEmptyAnalysis) {
		t.Fatalf("expected empty analysis error, got %v", err)
	}
}

func TestResilientModelTimeoutIsTemporary(t *testing.T) {
	cfg := resilience.DefaultConfig()
	cfg.BreakerEnabled = false
	cfg.AttemptTimeout = 5 * time.Millisecond
	model := &fakeModel{block: true}

	_, err := NewResilientModel(model, resilience.NewExecutor(cfg), "summarize").Complete(context.Background(), ports.CompletionRequest{})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if model.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", model.calls)
	}
}

func TestFormatConfidence(t *testing.T) {
	cases := map[float64]string{95: "95", 87.26: "87.3", 0: "0", 100: "100"}
	for in, want := range cases {
		if got := formatConfidence(in); got != want {
			t.Fatalf("formatConfidence(%v) = %q, want %q", in, got, want)
		}
	}
}
