package domain

import "time"

// MaxBucketItems caps every StructuredAnalysis list.
const MaxBucketItems = 5

type StructuredAnalysis struct {
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"key_points"`
	RiskFactors     []string `json:"risk_factors"`
	Benefits        []string `json:"benefits"`
	HiddenClauses   []string `json:"hidden_clauses"`
	Recommendations []string `json:"recommendations"`
}

// IsEmpty reports whether no bucket received any item.
func (a StructuredAnalysis) IsEmpty() bool {
	return len(a.KeyPoints) == 0 &&
		len(a.RiskFactors) == 0 &&
		len(a.Benefits) == 0 &&
		len(a.HiddenClauses) == 0 &&
		len(a.Recommendations) == 0
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type RiskAssessment struct {
	Score        int       `json:"score"`
	Level        RiskLevel `json:"level"`
	KeywordsHit  []string  `json:"keywords_hit,omitempty"`
	ClauseCount  int       `json:"clause_count"`
	Confidence   float64   `json:"confidence"`
	LongDocument bool      `json:"long_document"`
}

type AnalysisStatus string

const (
	// AnalysisComplete means the remote model produced a parseable analysis.
	AnalysisComplete AnalysisStatus = "complete"
	// AnalysisFallback means the fixed fallback analysis was substituted.
	AnalysisFallback AnalysisStatus = "fallback"
)

// AnalysisRequest is the text-level input of the pipeline after extraction.
type AnalysisRequest struct {
	FileName     string
	FileType     string
	AnalysisType string

	// Text is empty when extraction failed or the caller sent no text.
	Text       string
	Confidence float64

	// Counts reported by a client that annotated the document itself. Used only
	// when Text is empty.
	ReportedSections int
	ReportedClauses  int
}

type SummaryRequest struct {
	FileName     string
	FileType     string
	AnalysisType string
	Text         string
	Confidence   float64
	SectionCount int
	ClauseCount  int
}

type AnalysisReport struct {
	ID           string                  `json:"id"`
	FileName     string                  `json:"file_name"`
	FileType     string                  `json:"file_type"`
	AnalysisType string                  `json:"analysis_type,omitempty"`
	Status       AnalysisStatus          `json:"status"`
	RiskScore    int                     `json:"risk_score"`
	RiskLevel    RiskLevel               `json:"risk_level"`
	Risk         RiskAssessment          `json:"risk"`
	Summary      string                  `json:"summary"`
	Analysis     string                  `json:"analysis"`
	Structured   StructuredAnalysis      `json:"structured"`
	Sections     []DocumentSection       `json:"sections"`
	Hidden       []HiddenClauseCandidate `json:"hidden_clauses"`
	Extraction   ExtractionResult        `json:"extraction"`
	Warnings     []string                `json:"warnings,omitempty"`
	HandoffToken string                  `json:"handoff_token,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

// AnalysisEvent is the outbound notification emitted after an analysis. It never
// carries document text.
type AnalysisEvent struct {
	ID            string         `json:"id"`
	FileName      string         `json:"file_name"`
	Status        AnalysisStatus `json:"status"`
	RiskScore     int            `json:"risk_score"`
	RiskLevel     RiskLevel      `json:"risk_level"`
	HiddenClauses int            `json:"hidden_clauses"`
	CreatedAt     time.Time      `json:"created_at"`
}

func NewAnalysisEvent(report *AnalysisReport) AnalysisEvent {
	return AnalysisEvent{
		ID:            report.ID,
		FileName:      report.FileName,
		Status:        report.Status,
		RiskScore:     report.RiskScore,
		RiskLevel:     report.RiskLevel,
		HiddenClauses: len(report.Hidden),
		CreatedAt:     report.CreatedAt,
	}
}
