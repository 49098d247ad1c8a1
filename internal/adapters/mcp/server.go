package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/heuristics"
	"github.com/kirillkom/termlens/internal/core/ports"
)

const (
	serverName      = "termlens"
	maxProductMatch = 5
)

// Tools exposes the analysis pipeline and the product catalog as MCP tools.
type Tools struct {
	analyzer ports.DocumentAnalyzer
	kb       ports.KnowledgeBase
}

func NewTools(analyzer ports.DocumentAnalyzer, kb ports.KnowledgeBase) *Tools {
	return &Tools{analyzer: analyzer, kb: kb}
}

func (t *Tools) Server(version string) *server.MCPServer {
	s := server.NewMCPServer(serverName, version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("analyze_text",
		mcp.WithDescription("Analyse the text of a financial document: sections, hidden clauses, risk score and a plain-language review."),
		mcp.WithString("file_name", mcp.Required(), mcp.Description("Name of the source document")),
		mcp.WithString("text", mcp.Description("Extracted document text")),
		mcp.WithString("file_type", mcp.Description("MIME type of the source document")),
		mcp.WithString("analysis_type", mcp.Description("Kind of document, e.g. loan or credit_card")),
		mcp.WithNumber("confidence", mcp.Description("Extraction confidence in percent, 0-100")),
	), t.analyzeText)

	s.AddTool(mcp.NewTool("score_risk",
		mcp.WithDescription("Score document risk from hidden clause count, extraction confidence and text length."),
		mcp.WithNumber("hidden_clause_count", mcp.Required(), mcp.Description("Number of hidden clause candidates")),
		mcp.WithNumber("confidence", mcp.Description("Extraction confidence in percent, 0-100")),
		mcp.WithNumber("text_length", mcp.Description("Length of the extracted text in characters")),
		mcp.WithString("text", mcp.Description("Optional text scanned for risk keywords")),
	), t.scoreRisk)

	s.AddTool(mcp.NewTool("lookup_product",
		mcp.WithDescription("Look up financial products in the catalog by name, company or type, or fetch one by slug."),
		mcp.WithString("query", mcp.Description("Free-text product query")),
		mcp.WithString("slug", mcp.Description("Exact product slug")),
	), t.lookupProduct)

	return s
}

func (t *Tools) analyzeText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileName, err := req.RequireString("file_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := t.analyzer.AnalyzeText(ctx, domain.AnalysisRequest{
		FileName:     fileName,
		FileType:     req.GetString("file_type", ""),
		AnalysisType: req.GetString("analysis_type", ""),
		Text:         req.GetString("text", ""),
		Confidence:   req.GetFloat("confidence", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (t *Tools) scoreRisk(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clauses, err := req.RequireFloat("hidden_clause_count")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if clauses < 0 {
		return mcp.NewToolResultError("hidden_clause_count must not be negative"), nil
	}
	text := req.GetString("text", "")
	textLength := req.GetInt("text_length", len([]rune(text)))

	risk := heuristics.ScoreRisk(heuristics.RiskInput{
		HiddenClauseCount:    int(clauses),
		ExtractionConfidence: req.GetFloat("confidence", 0),
		TextLength:           textLength,
		KeywordHits:          heuristics.KeywordHits(text),
	})
	return jsonResult(risk)
}

func (t *Tools) lookupProduct(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if slug := strings.TrimSpace(req.GetString("slug", "")); slug != "" {
		product, ok := t.kb.Product(slug)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no product with slug %q", slug)), nil
		}
		return jsonResult(product)
	}

	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("query or slug is required"), nil
	}
	matches := t.kb.Search(query, nil)
	if len(matches) > maxProductMatch {
		matches = matches[:maxProductMatch]
	}
	return jsonResult(map[string]any{"matches": matches})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
