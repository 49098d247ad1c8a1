package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirillkom/termlens/internal/core/domain"
)

// AuditUseCase records analysis events on the consumer side and flags documents
// at or above the alert level.
type AuditUseCase struct {
	alertLevel domain.RiskLevel
}

func NewAuditUseCase(alertLevel domain.RiskLevel) *AuditUseCase {
	if alertLevel == "" {
		alertLevel = domain.RiskHigh
	}
	return &AuditUseCase{alertLevel: alertLevel}
}

// Handle reports whether the event raised an alert.
func (uc *AuditUseCase) Handle(ctx context.Context, event domain.AnalysisEvent) (bool, error) {
	if event.ID == "" {
		return false, domain.WrapError(domain.ErrInvalidInput, "audit event", errors.New("event id is required"))
	}
	if event.RiskScore < 0 || event.RiskScore > 100 {
		return false, domain.WrapError(domain.ErrInvalidInput, "audit event", fmt.Errorf("risk score %d out of range", event.RiskScore))
	}

	slog.InfoContext(ctx, "analysis_event_received",
		"analysis_id", event.ID,
		"file_name", event.FileName,
		"status", string(event.Status),
		"risk_score", event.RiskScore,
		"risk_level", string(event.RiskLevel),
		"hidden_clauses", event.HiddenClauses,
	)

	if riskRank(event.RiskLevel) < riskRank(uc.alertLevel) {
		return false, nil
	}
	slog.WarnContext(ctx, "risk_alert",
		"analysis_id", event.ID,
		"file_name", event.FileName,
		"risk_score", event.RiskScore,
		"risk_level", string(event.RiskLevel),
	)
	return true, nil
}

func riskRank(level domain.RiskLevel) int {
	switch level {
	case domain.RiskLow:
		return 1
	case domain.RiskMedium:
		return 2
	case domain.RiskHigh:
		return 3
	default:
		return 0
	}
}
