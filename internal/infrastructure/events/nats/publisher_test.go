package nats

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/infrastructure/resilience"
)

type connFake struct {
	msgs []*nats.Msg
	errs []error
}

func (f *connFake) PublishMsg(msg *nats.Msg) error {
	f.msgs = append(f.msgs, msg)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func sampleEvent() domain.AnalysisEvent {
	return domain.AnalysisEvent{
		ID:            "a1",
		FileName:      "card.pdf",
		Status:        domain.AnalysisComplete,
		RiskScore:     65,
		RiskLevel:     domain.RiskMedium,
		HiddenClauses: 2,
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestPublishAnalysisCompletedEncodesEvent(t *testing.T) {
	conn := &connFake{}
	p := newPublisher(conn, "", nil)

	if err := p.PublishAnalysisCompleted(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("PublishAnalysisCompleted() error = %v", err)
	}
	if len(conn.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(conn.msgs))
	}
	msg := conn.msgs[0]
	if msg.Subject != DefaultSubject {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.Header.Get(nats.MsgIdHdr) != "a1" {
		t.Fatalf("expected message id header, got %q", msg.Header.Get(nats.MsgIdHdr))
	}

	var got domain.AnalysisEvent
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.ID != "a1" || got.RiskScore != 65 || got.HiddenClauses != 2 {
		t.Fatalf("unexpected payload %+v", got)
	}
	if strings.Contains(string(msg.Data), "text") {
		t.Fatalf("payload must not carry document text: %s", msg.Data)
	}
}

func TestPublishRetriesConnectionErrors(t *testing.T) {
	cfg := resilience.DefaultConfig()
	cfg.RetryMaxAttempts = 2
	cfg.RetryInitialBackoff = time.Millisecond
	cfg.RetryMaxBackoff = time.Millisecond
	cfg.BreakerEnabled = false

	conn := &connFake{errs: []error{nats.ErrDisconnected}}
	p := newPublisher(conn, "custom.subject", resilience.NewExecutor(cfg))

	if err := p.PublishAnalysisCompleted(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("PublishAnalysisCompleted() error = %v", err)
	}
	if len(conn.msgs) != 2 {
		t.Fatalf("expected a retry, got %d attempts", len(conn.msgs))
	}
}

func TestPublishMarksConnectionErrorsTemporary(t *testing.T) {
	conn := &connFake{errs: []error{nats.ErrNoServers}}
	p := newPublisher(conn, "s", nil)

	err := p.PublishAnalysisCompleted(context.Background(), sampleEvent())
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}

func TestPublishKeepsPermanentErrors(t *testing.T) {
	conn := &connFake{errs: []error{errors.New("maximum payload exceeded")}}
	p := newPublisher(conn, "s", nil)

	err := p.PublishAnalysisCompleted(context.Background(), sampleEvent())
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected a permanent error, got %v", err)
	}
}

func TestDecodeAnalysisEventRoundTrip(t *testing.T) {
	conn := &connFake{}
	p := newPublisher(conn, "", nil)
	if err := p.PublishAnalysisCompleted(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("PublishAnalysisCompleted() error = %v", err)
	}

	event, err := DecodeAnalysisEvent(conn.msgs[0].Data)
	if err != nil {
		t.Fatalf("DecodeAnalysisEvent() error = %v", err)
	}
	want := sampleEvent()
	if event.ID != want.ID || event.RiskLevel != want.RiskLevel || event.HiddenClauses != want.HiddenClauses {
		t.Fatalf("expected %+v, got %+v", want, event)
	}
	if !event.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("expected created_at %s, got %s", want.CreatedAt, event.CreatedAt)
	}
}

func TestDecodeAnalysisEventRejectsMissingID(t *testing.T) {
	if _, err := DecodeAnalysisEvent([]byte(`{"file_name":"x"}`)); err == nil {
		t.Fatalf("expected error for event without id")
	}
	if _, err := DecodeAnalysisEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
