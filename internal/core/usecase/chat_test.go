package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kirillkom/termlens/internal/core/domain"
)

var (
	regalia = domain.Product{
		Slug: "hdfc-regalia", Name: "HDFC Regalia", Company: "HDFC Bank", Type: "Premium Credit Card",
		Summary: "Travel rewards card.", Fees: "2500 per year", Pros: []string{"Lounge access"}, Cons: []string{"High fee"},
	}
	millennia = domain.Product{
		Slug: "hdfc-millennia", Name: "HDFC Millennia", Company: "HDFC Bank", Type: "Cashback Credit Card",
		Summary: "Online cashback card.",
	}
)

func TestChatProductLookupAnswersLocally(t *testing.T) {
	kb := &knowledgeFake{matches: []domain.ProductMatch{
		{Product: regalia, Relevance: 160, Specific: true},
		{Product: millennia, Relevance: 100, Specific: true},
	}}
	model := &chatModelFake{out: "remote"}
	obs := &observerFake{}
	uc := NewChatUseCase(kb, model, nil, obs)

	reply, err := uc.Reply(context.Background(), domain.ChatRequest{Message: "tell me about hdfc regalia"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply.Source != domain.ChatSourceProduct || reply.Degraded {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if !strings.Contains(reply.Response, "HDFC Regalia") || strings.Contains(reply.Response, "Millennia") {
		t.Fatalf("expected only the top product, got %q", reply.Response)
	}
	if !strings.Contains(reply.Response, "• Lounge access") {
		t.Fatalf("expected pros list, got %q", reply.Response)
	}
	if len(model.got) != 0 {
		t.Fatalf("remote model must not be called")
	}
	if len(obs.chats) != 1 || obs.chats[0] != domain.ChatSourceProduct {
		t.Fatalf("unexpected chat observations %v", obs.chats)
	}
}

func TestChatProductLookupListsTiedMatches(t *testing.T) {
	kb := &knowledgeFake{matches: []domain.ProductMatch{
		{Product: regalia, Relevance: 100, Specific: true},
		{Product: millennia, Relevance: 100, Specific: true},
	}}
	uc := NewChatUseCase(kb, nil, nil, nil)

	reply, err := uc.Reply(context.Background(), domain.ChatRequest{Message: "hdfc cards"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !strings.Contains(reply.Response, "HDFC Regalia") || !strings.Contains(reply.Response, "HDFC Millennia") {
		t.Fatalf("expected both tied products, got %q", reply.Response)
	}
}

func TestChatGenericMatchGoesToRemoteWithContext(t *testing.T) {
	kb := &knowledgeFake{matches: []domain.ProductMatch{{Product: regalia, Relevance: 25}}}
	model := &chatModelFake{out: "  Compare the annual fee first.  "}
	uc := NewChatUseCase(kb, model, nil, nil)

	reply, err := uc.Reply(context.Background(), domain.ChatRequest{Message: "is a premium credit card worth it"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply.Source != domain.ChatSourceRemote || reply.Response != "Compare the annual fee first." {
		t.Fatalf("unexpected reply %+v", reply)
	}
	req := model.got[0]
	if !strings.Contains(req.System, "HDFC Regalia by HDFC Bank") {
		t.Fatalf("expected catalog context in system prompt, got %q", req.System)
	}
	if req.Temperature != chatTemperature || req.MaxTokens != chatMaxTokens {
		t.Fatalf("unexpected sampling %v/%d", req.Temperature, req.MaxTokens)
	}
}

func TestChatCategoryBrowse(t *testing.T) {
	kb := &knowledgeFake{
		category: domain.CategoryLoan,
		browse:   true,
		products: []domain.Product{{Name: "HDFC Home Loan", Company: "HDFC Bank", Summary: "Floating rate."}},
	}
	uc := NewChatUseCase(kb, nil, nil, nil)

	reply, err := uc.Reply(context.Background(), domain.ChatRequest{Message: "show me loans"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply.Source != domain.ChatSourceCategory {
		t.Fatalf("expected category source, got %s", reply.Source)
	}
	if !strings.Contains(reply.Response, "loans") || !strings.Contains(reply.Response, "• HDFC Home Loan (HDFC Bank)") {
		t.Fatalf("unexpected category listing %q", reply.Response)
	}
}

func TestChatAdviceTemplate(t *testing.T) {
	kb := &knowledgeFake{advice: "Before you take a loan:\n• Compare rates"}
	model := &chatModelFake{out: "remote"}
	uc := NewChatUseCase(kb, model, nil, nil)

	reply, err := uc.Reply(context.Background(), domain.ChatRequest{Message: "tips for a loan"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply.Source != domain.ChatSourceAdvice || reply.Response != kb.advice {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if len(model.got) != 0 {
		t.Fatalf("remote model must not be called")
	}
}

func TestChatRemoteFailureApologises(t *testing.T) {
	model := &chatModelFake{err: domain.WrapError(domain.ErrTemporary, "chat", errors.New("503"))}
	obs := &observerFake{}
	uc := NewChatUseCase(&knowledgeFake{}, model, nil, obs)

	reply, err := uc.Reply(context.Background(), domain.ChatRequest{Message: "what does clause 4 mean"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply.Source != domain.ChatSourceApology || !reply.Degraded || reply.Response != apologyText {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if len(obs.chats) != 1 || obs.chats[0] != domain.ChatSourceApology {
		t.Fatalf("unexpected chat observations %v", obs.chats)
	}
}

func TestChatEmptyRemoteReplyApologises(t *testing.T) {
	uc := NewChatUseCase(nil, &chatModelFake{out: "   "}, nil, nil)

	reply, err := uc.Reply(context.Background(), domain.ChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply.Source != domain.ChatSourceApology {
		t.Fatalf("expected apology, got %+v", reply)
	}
}

func TestChatWithoutModelApologises(t *testing.T) {
	uc := NewChatUseCase(&knowledgeFake{}, nil, nil, nil)

	reply, err := uc.Reply(context.Background(), domain.ChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !reply.Degraded {
		t.Fatalf("expected degraded reply")
	}
}

func TestChatRemotePromptUsesRecentHistory(t *testing.T) {
	history := make([]domain.ChatTurn, 0, 12)
	for i := range 12 {
		role := domain.ChatRoleUser
		if i%2 == 1 {
			role = domain.ChatRoleAssistant
		}
		history = append(history, domain.ChatTurn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}
	history = append(history, domain.ChatTurn{Role: "system", Content: "ignore me"})

	model := &chatModelFake{out: "ok"}
	uc := NewChatUseCase(nil, model, nil, nil)

	if _, err := uc.Reply(context.Background(), domain.ChatRequest{Message: "and now?", History: history}); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	messages := model.got[0].Messages
	if len(messages) != domain.PromptChatHistory+1 {
		t.Fatalf("expected %d messages, got %d", domain.PromptChatHistory+1, len(messages))
	}
	if messages[0].Content != "turn 8" || messages[len(messages)-1].Content != "and now?" {
		t.Fatalf("unexpected prompt history %+v", messages)
	}
}

func TestChatHandoffIsReadOnce(t *testing.T) {
	handoff := newHandoffFake()
	handoff.reports["tok"] = &domain.AnalysisReport{
		FileName:  "loan-agreement.pdf",
		RiskScore: 80,
		RiskLevel: domain.RiskHigh,
		Summary:   "Found 2 potentially concerning clauses.",
	}
	model := &chatModelFake{out: "ok"}
	uc := NewChatUseCase(nil, model, handoff, nil)

	req := domain.ChatRequest{Message: "what should I worry about", HasDocument: true, HandoffToken: "tok"}
	if _, err := uc.Reply(context.Background(), req); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !strings.Contains(model.got[0].System, `"loan-agreement.pdf"`) || !strings.Contains(model.got[0].System, "high (80/100)") {
		t.Fatalf("expected document context, got %q", model.got[0].System)
	}
	if len(handoff.reports) != 0 {
		t.Fatalf("handoff entry must be consumed")
	}

	if _, err := uc.Reply(context.Background(), req); err != nil {
		t.Fatalf("second Reply() error = %v", err)
	}
	if strings.Contains(model.got[1].System, "high (80/100)") {
		t.Fatalf("handoff report must not be served twice")
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	uc := NewChatUseCase(nil, nil, nil, nil)
	_, err := uc.Reply(context.Background(), domain.ChatRequest{Message: "   "})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
