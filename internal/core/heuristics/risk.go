package heuristics

import (
	"math"

	"github.com/kirillkom/termlens/internal/core/domain"
)

const (
	riskBase = 30

	longDocumentChars = 10000
	keywordWeight     = 5

	highThreshold   = 75
	mediumThreshold = 50
)

type RiskInput struct {
	HiddenClauseCount    int
	ExtractionConfidence float64
	TextLength           int
	KeywordHits          []string
}

// ScoreRisk is total: any input yields a score in [0, 100] and a valid level.
func ScoreRisk(in RiskInput) domain.RiskAssessment {
	clauses := max(in.HiddenClauseCount, 0)
	textLength := max(in.TextLength, 0)
	confidence := in.ExtractionConfidence
	if math.IsNaN(confidence) || confidence < 0 {
		confidence = 0
	}
	keywords := distinct(in.KeywordHits)

	score := riskBase
	switch {
	case clauses >= 5:
		score += 40
	case clauses >= 3:
		score += 25
	case clauses >= 1:
		score += 15
	}
	switch {
	case confidence < 70:
		score += 20
	case confidence < 85:
		score += 10
	}
	long := textLength > longDocumentChars
	if long {
		score += 10
	}
	score += keywordWeight * len(keywords)
	score = min(max(score, 0), 100)

	return domain.RiskAssessment{
		Score:        score,
		Level:        riskLevel(score, clauses),
		KeywordsHit:  keywords,
		ClauseCount:  clauses,
		Confidence:   confidence,
		LongDocument: long,
	}
}

func riskLevel(score, clauses int) domain.RiskLevel {
	switch {
	case clauses >= 5 || score >= highThreshold:
		return domain.RiskHigh
	case score >= mediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func distinct(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
