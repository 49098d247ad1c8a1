package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/termlens/internal/core/domain"
)

// HandoffRepository shares parked reports between API replicas. Reads delete the
// row, so each token is served at most once.
type HandoffRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewHandoffRepository(db *sql.DB, ttl time.Duration) *HandoffRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &HandoffRepository{db: db, ttl: ttl, now: time.Now}
}

func (r *HandoffRepository) Put(ctx context.Context, token string, report *domain.AnalysisReport) error {
	if token == "" || report == nil {
		return domain.WrapError(domain.ErrInvalidInput, "put handoff", errors.New("token and report are required"))
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal handoff report: %w", err)
	}
	now := r.now().UTC()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM report_handoffs WHERE expires_at <= $1`, now); err != nil {
		return fmt.Errorf("purge expired handoffs: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO report_handoffs (token, report, created_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (token) DO UPDATE SET
	report = EXCLUDED.report,
	created_at = EXCLUDED.created_at,
	expires_at = EXCLUDED.expires_at
`, token, payload, now, now.Add(r.ttl))
	if err != nil {
		return fmt.Errorf("insert handoff: %w", err)
	}
	return nil
}

func (r *HandoffRepository) Take(ctx context.Context, token string) (*domain.AnalysisReport, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `
DELETE FROM report_handoffs
WHERE token = $1 AND expires_at > $2
RETURNING report
`, token, r.now().UTC()).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrHandoffNotFound, "take handoff", fmt.Errorf("token %q", token))
		}
		return nil, fmt.Errorf("take handoff: %w", err)
	}

	var report domain.AnalysisReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decode handoff report: %w", err)
	}
	return &report, nil
}
