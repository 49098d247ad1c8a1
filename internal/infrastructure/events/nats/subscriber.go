package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/termlens/internal/core/domain"
)

// Subscriber consumes analysis events as part of a queue group.
type Subscriber struct {
	conn       *nats.Conn
	subject    string
	queueGroup string
}

func NewSubscriber(url, subject, queueGroup string, options Options) (*Subscriber, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	conn, err := nats.Connect(
		url,
		nats.Name("termlens-worker"),
		nats.Timeout(connectTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &Subscriber{conn: conn, subject: subject, queueGroup: queueGroup}, nil
}

func (s *Subscriber) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// SubscribeAnalysisCompleted blocks until ctx is done, then drains the subscription.
func (s *Subscriber) SubscribeAnalysisCompleted(ctx context.Context, handler func(context.Context, domain.AnalysisEvent) error) error {
	sub, err := s.conn.QueueSubscribe(s.subject, s.queueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		event, err := DecodeAnalysisEvent(msg.Data)
		if err != nil {
			slog.Warn("analysis_event_malformed", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, event); err != nil {
			slog.Error("analysis_event_handler_failed", "analysis_id", event.ID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := s.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := s.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func DecodeAnalysisEvent(data []byte) (domain.AnalysisEvent, error) {
	var event domain.AnalysisEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.AnalysisEvent{}, fmt.Errorf("decode analysis event: %w", err)
	}
	if event.ID == "" {
		return domain.AnalysisEvent{}, errors.New("decode analysis event: missing id")
	}
	return event, nil
}
