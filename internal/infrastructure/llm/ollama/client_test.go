package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/ports"
	"github.com/kirillkom/termlens/internal/infrastructure/resilience"
)

func TestCompleteSendsSystemHistoryAndOptions(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"  ## Overview\nFine.  "}}`))
	}))
	defer server.Close()

	client := New(server.URL+"/", "llama3", 0)
	got, err := client.Complete(context.Background(), ports.CompletionRequest{
		System:      "You analyse documents.",
		Messages:    []domain.ChatTurn{{Role: domain.ChatRoleUser, Content: "Analyse this"}},
		Temperature: 0.3,
		MaxTokens:   2500,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "## Overview\nFine." {
		t.Fatalf("unexpected content %q", got)
	}
	if captured.Model != "llama3" || captured.Stream {
		t.Fatalf("unexpected request %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != "Analyse this" {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}
	if captured.Options["temperature"] != 0.3 || captured.Options["num_predict"] != float64(2500) {
		t.Fatalf("unexpected options %+v", captured.Options)
	}
}

func TestCompleteReturnsStatusErrorWithBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, "llama3", 0).Complete(context.Background(), ports.CompletionRequest{System: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	var statusErr *resilience.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
