package analysisparser

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/ports"
)

const schemaURL = "termlens://analysis.schema.json"

// AnalysisSchema is the JSON contract requested from models in structured mode.
const AnalysisSchema = `{
  "type": "object",
  "required": ["summary", "key_points", "risk_factors", "benefits", "hidden_clauses", "recommendations"],
  "properties": {
    "summary": {"type": "string"},
    "key_points": {"type": "array", "items": {"type": "string"}},
    "risk_factors": {"type": "array", "items": {"type": "string"}},
    "benefits": {"type": "array", "items": {"type": "string"}},
    "hidden_clauses": {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}}
  }
}`

// StructuredParser accepts JSON output that satisfies AnalysisSchema and
// hands anything else to the fallback parser.
type StructuredParser struct {
	schema   *jsonschema.Schema
	fallback ports.AnalysisParser
}

func NewStructuredParser(fallback ports.AnalysisParser) (*StructuredParser, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(AnalysisSchema)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, err
	}
	if fallback == nil {
		fallback = NewHeadingParser()
	}
	return &StructuredParser{schema: schema, fallback: fallback}, nil
}

func (p *StructuredParser) Parse(raw string) domain.StructuredAnalysis {
	payload, ok := jsonPayload(raw)
	if !ok {
		return p.fallback.Parse(raw)
	}

	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		slog.Debug("structured_output_invalid_json", "error", err)
		return p.fallback.Parse(raw)
	}
	if err := p.schema.Validate(doc); err != nil {
		slog.Warn("structured_output_schema_mismatch", "error", err)
		return p.fallback.Parse(raw)
	}

	var out domain.StructuredAnalysis
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return p.fallback.Parse(raw)
	}
	out.Summary = strings.TrimSpace(out.Summary)
	out.KeyPoints = normaliseItems(out.KeyPoints)
	out.RiskFactors = normaliseItems(out.RiskFactors)
	out.Benefits = normaliseItems(out.Benefits)
	out.HiddenClauses = normaliseItems(out.HiddenClauses)
	out.Recommendations = normaliseItems(out.Recommendations)
	return out
}

// jsonPayload strips an optional markdown code fence and reports whether the
// remainder looks like a JSON object.
func jsonPayload(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	return s, strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

func normaliseItems(in []string) []string {
	out := make([]string, 0, min(len(in), domain.MaxBucketItems))
	seen := make(map[string]struct{}, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if len(out) == domain.MaxBucketItems {
			break
		}
	}
	return out
}
