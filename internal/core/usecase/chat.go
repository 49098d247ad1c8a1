package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/ports"
)

// ChatResponder is one rung of the chat ladder. A nil reply with a nil error
// passes the turn to the next responder.
type ChatResponder interface {
	Name() domain.ChatSource
	Respond(ctx context.Context, chat domain.ChatContext) (*domain.ChatReply, error)
}

type ChatUseCase struct {
	responders []ChatResponder
	handoff    ports.HandoffStore
	observer   ports.PipelineObserver
}

// NewChatUseCase builds the default ladder: product lookup, category browse,
// advice, remote model and the static apology. model may be nil.
func NewChatUseCase(
	kb ports.KnowledgeBase,
	model ports.ChatModel,
	handoff ports.HandoffStore,
	observer ports.PipelineObserver,
) *ChatUseCase {
	var responders []ChatResponder
	if kb != nil {
		responders = append(responders,
			NewProductResponder(kb),
			NewCategoryResponder(kb),
			NewAdviceResponder(kb),
		)
	}
	if model != nil {
		responders = append(responders, NewRemoteResponder(model, kb))
	}
	return NewChatUseCaseWithResponders(responders, handoff, observer)
}

// NewChatUseCaseWithResponders runs responders in order. The apology responder is
// always appended so every turn gets an answer.
func NewChatUseCaseWithResponders(responders []ChatResponder, handoff ports.HandoffStore, observer ports.PipelineObserver) *ChatUseCase {
	chain := make([]ChatResponder, 0, len(responders)+1)
	chain = append(chain, responders...)
	chain = append(chain, ApologyResponder{})
	return &ChatUseCase{responders: chain, handoff: handoff, observer: observer}
}

func (uc *ChatUseCase) Reply(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat reply", errors.New("message is required"))
	}

	chat := domain.ChatContext{
		Request:  req,
		History:  domain.TrimHistory(cleanHistory(req.History), domain.MaxChatHistory),
		Document: uc.redeem(ctx, req.HandoffToken),
	}

	for _, responder := range uc.responders {
		reply, err := responder.Respond(ctx, chat)
		if err != nil {
			slog.WarnContext(ctx, "chat_responder_failed", "responder", string(responder.Name()), "error", err)
			continue
		}
		if reply == nil {
			continue
		}
		if uc.observer != nil {
			uc.observer.ObserveChat(reply.Source)
		}
		return reply, nil
	}

	// Unreachable while the apology responder closes the chain.
	return apologyReply(), nil
}

// redeem consumes the handoff token. Unknown or expired tokens are ignored.
func (uc *ChatUseCase) redeem(ctx context.Context, token string) *domain.AnalysisReport {
	token = strings.TrimSpace(token)
	if token == "" || uc.handoff == nil {
		return nil
	}
	report, err := uc.handoff.Take(ctx, token)
	if err != nil {
		if domain.IsKind(err, domain.ErrHandoffNotFound) {
			slog.InfoContext(ctx, "handoff_token_missing", "error", err)
		} else {
			slog.WarnContext(ctx, "handoff_take_failed", "error", err)
		}
		return nil
	}
	return report
}

func cleanHistory(history []domain.ChatTurn) []domain.ChatTurn {
	out := make([]domain.ChatTurn, 0, len(history))
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch turn.Role {
		case domain.ChatRoleUser, domain.ChatRoleAssistant:
			out = append(out, domain.ChatTurn{Role: turn.Role, Content: content})
		}
	}
	return out
}
