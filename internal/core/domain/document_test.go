package domain

import "testing"

func TestIsSupportedUpload(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		mimeType string
		want     bool
	}{
		{"pdf mime", "x.bin", "application/pdf", true},
		{"text mime with charset", "notes", "text/plain; charset=utf-8", true},
		{"png", "scan.png", "image/png", true},
		{"docx by extension", "contract.DOCX", "application/octet-stream", true},
		{"gif rejected", "anim.gif", "image/gif", false},
		{"zip rejected", "bundle.zip", "application/zip", false},
	}
	for _, tc := range cases {
		if got := IsSupportedUpload(tc.filename, tc.mimeType); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestTrimHistoryKeepsMostRecent(t *testing.T) {
	history := make([]ChatTurn, 12)
	for i := range history {
		history[i] = ChatTurn{Role: ChatRoleUser, Content: string(rune('a' + i))}
	}
	got := TrimHistory(history, MaxChatHistory)
	if len(got) != 10 || got[0].Content != "c" {
		t.Fatalf("expected last 10 turns starting at c, got %d starting %q", len(got), got[0].Content)
	}
	if len(TrimHistory(history[:3], PromptChatHistory)) != 3 {
		t.Fatalf("expected short history untouched")
	}
}

func TestExtractionErrorUnwraps(t *testing.T) {
	cause := ErrTemporary
	err := WrapError(ErrInvalidInput, "extract", NewExtractionError(ExtractionOCRUnavailable, "a.png", cause))

	extractErr, ok := AsExtractionError(err)
	if !ok {
		t.Fatalf("expected extraction error in chain")
	}
	if extractErr.Kind != ExtractionOCRUnavailable {
		t.Fatalf("unexpected kind %q", extractErr.Kind)
	}
	if !IsKind(err, ErrTemporary) || !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected both kinds to match")
	}
}
