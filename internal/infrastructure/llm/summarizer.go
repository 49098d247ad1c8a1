package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/ports"
)

var ErrEmptyAnalysis = errors.New("remote model returned an empty analysis")

// Summarizer asks a chat model for the free-text document analysis.
type Summarizer struct {
	model      ports.ChatModel
	structured bool
}

// NewSummarizer builds a summarizer. With structured set the model is asked
// for JSON matching the analysis schema instead of headed plain text.
func NewSummarizer(model ports.ChatModel, structured bool) *Summarizer {
	return &Summarizer{model: model, structured: structured}
}

func (s *Summarizer) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	out, err := s.model.Complete(ctx, ports.CompletionRequest{
		System: analysisSystemPrompt(req, s.structured),
		Messages: []domain.ChatTurn{
			{Role: domain.ChatRoleUser, Content: analysisUserPrompt(req)},
		},
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyAnalysis
	}
	return out, nil
}
