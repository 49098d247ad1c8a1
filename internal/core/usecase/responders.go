package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/ports"
)

const (
	chatTemperature = 0.3
	chatMaxTokens   = 1000

	// knowledgeContextMatches is how many catalog hits are given to the remote model.
	knowledgeContextMatches = 3

	apologyText = "I'm experiencing technical difficulties. Please try again in a moment."
)

var errEmptyChatReply = errors.New("remote model returned an empty reply")

// ProductResponder answers when the message names specific catalog products.
type ProductResponder struct {
	kb ports.KnowledgeBase
}

func NewProductResponder(kb ports.KnowledgeBase) *ProductResponder {
	return &ProductResponder{kb: kb}
}

func (r *ProductResponder) Name() domain.ChatSource { return domain.ChatSourceProduct }

func (r *ProductResponder) Respond(_ context.Context, chat domain.ChatContext) (*domain.ChatReply, error) {
	matches := r.kb.Search(chat.Request.Message, chat.History)
	if len(matches) == 0 || !matches[0].Specific {
		return nil, nil
	}

	top := matches[0].Relevance
	var b strings.Builder
	for i, m := range matches {
		if i > 0 && (m.Relevance != top || !m.Specific) {
			break
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		writeProduct(&b, m.Product)
	}
	return &domain.ChatReply{Response: b.String(), Source: domain.ChatSourceProduct}, nil
}

// CategoryResponder lists a category when the user asks to browse it.
type CategoryResponder struct {
	kb ports.KnowledgeBase
}

func NewCategoryResponder(kb ports.KnowledgeBase) *CategoryResponder {
	return &CategoryResponder{kb: kb}
}

func (r *CategoryResponder) Name() domain.ChatSource { return domain.ChatSourceCategory }

func (r *CategoryResponder) Respond(_ context.Context, chat domain.ChatContext) (*domain.ChatReply, error) {
	category, ok := r.kb.BrowseCategory(chat.Request.Message)
	if !ok {
		return nil, nil
	}
	products := r.kb.Products(category)
	if len(products) == 0 {
		return nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the %s I can tell you about:\n", strings.ToLower(r.kb.CategoryLabel(category)))
	for _, p := range products {
		fmt.Fprintf(&b, "• %s (%s): %s\n", p.Name, p.Company, p.Summary)
	}
	b.WriteString("\nAsk about any of them by name for fees, pros and cons.")
	return &domain.ChatReply{Response: b.String(), Source: domain.ChatSourceCategory}, nil
}

// AdviceResponder returns a canned checklist for loan, card and insurance questions.
type AdviceResponder struct {
	kb ports.KnowledgeBase
}

func NewAdviceResponder(kb ports.KnowledgeBase) *AdviceResponder {
	return &AdviceResponder{kb: kb}
}

func (r *AdviceResponder) Name() domain.ChatSource { return domain.ChatSourceAdvice }

func (r *AdviceResponder) Respond(_ context.Context, chat domain.ChatContext) (*domain.ChatReply, error) {
	advice, ok := r.kb.Advice(chat.Request.Message)
	if !ok {
		return nil, nil
	}
	return &domain.ChatReply{Response: advice, Source: domain.ChatSourceAdvice}, nil
}

// RemoteResponder asks the language model. kb is optional and only adds context.
type RemoteResponder struct {
	model ports.ChatModel
	kb    ports.KnowledgeBase
}

func NewRemoteResponder(model ports.ChatModel, kb ports.KnowledgeBase) *RemoteResponder {
	return &RemoteResponder{model: model, kb: kb}
}

func (r *RemoteResponder) Name() domain.ChatSource { return domain.ChatSourceRemote }

func (r *RemoteResponder) Respond(ctx context.Context, chat domain.ChatContext) (*domain.ChatReply, error) {
	var matches []domain.ProductMatch
	if r.kb != nil {
		matches = r.kb.Search(chat.Request.Message, chat.History)
	}

	history := domain.TrimHistory(chat.History, domain.PromptChatHistory)
	messages := make([]domain.ChatTurn, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, domain.ChatTurn{Role: domain.ChatRoleUser, Content: chat.Request.Message})

	out, err := r.model.Complete(ctx, ports.CompletionRequest{
		System:      chatSystemPrompt(chat, matches),
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("remote chat: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, errEmptyChatReply
	}
	return &domain.ChatReply{Response: out, Source: domain.ChatSourceRemote}, nil
}

// ApologyResponder always answers and marks the reply as degraded.
type ApologyResponder struct{}

func (ApologyResponder) Name() domain.ChatSource { return domain.ChatSourceApology }

func (ApologyResponder) Respond(context.Context, domain.ChatContext) (*domain.ChatReply, error) {
	return apologyReply(), nil
}

func apologyReply() *domain.ChatReply {
	return &domain.ChatReply{Response: apologyText, Source: domain.ChatSourceApology, Degraded: true}
}

const chatPersona = `You are TermLens, an assistant that explains consumer financial documents and products in plain language.
Answer the user's question directly. Point out fees, penalties, renewal terms and other clauses that could cost the user money.
Do not invent product details. If you are unsure, say so and suggest what the user should check in the document.
Keep answers short and use bullet points for lists.`

func chatSystemPrompt(chat domain.ChatContext, matches []domain.ProductMatch) string {
	var b strings.Builder
	b.WriteString(chatPersona)

	if doc := chat.Document; doc != nil {
		fmt.Fprintf(&b, "\n\nThe user analysed the document %q.", doc.FileName)
		fmt.Fprintf(&b, "\nRisk: %s (%d/100).", doc.RiskLevel, doc.RiskScore)
		if doc.Summary != "" {
			fmt.Fprintf(&b, "\nSummary: %s", doc.Summary)
		}
		if doc.Structured.Summary != "" {
			fmt.Fprintf(&b, "\nAnalysis overview: %s", doc.Structured.Summary)
		}
		writeList(&b, "Risk factors", doc.Structured.RiskFactors)
		writeList(&b, "Hidden clauses", doc.Structured.HiddenClauses)
	} else if chat.Request.HasDocument && chat.Request.FileName != "" {
		fmt.Fprintf(&b, "\n\nThe user has uploaded the document %q. Its contents are not available to you.", chat.Request.FileName)
	}

	if n := min(len(matches), knowledgeContextMatches); n > 0 {
		b.WriteString("\n\nRelevant products from the catalog:")
		for _, m := range matches[:n] {
			p := m.Product
			fmt.Fprintf(&b, "\n- %s by %s (%s): %s", p.Name, p.Company, p.Type, p.Summary)
			if p.Fees != "" {
				fmt.Fprintf(&b, " Fees: %s.", p.Fees)
			}
		}
	}
	return b.String()
}

func writeProduct(b *strings.Builder, p domain.Product) {
	fmt.Fprintf(b, "%s by %s (%s)\n%s", p.Name, p.Company, p.Type, p.Summary)
	if p.Fees != "" {
		fmt.Fprintf(b, "\nFees: %s", p.Fees)
	}
	writeList(b, "Pros", p.Pros)
	writeList(b, "Cons", p.Cons)
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:", title)
	for _, item := range items {
		fmt.Fprintf(b, "\n• %s", item)
	}
}
