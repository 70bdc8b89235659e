package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/oncodrug-server/internal/domain"
	"github.com/oncodrug-server/internal/service"
	"github.com/oncodrug-server/pkg/hgvs"
)

// SearchDrugByVariantParams defines parameters for the search_drug_by_variant tool
type SearchDrugByVariantParams struct {
	CancerType string   `json:"cancer_type" jsonschema:"cancer type code: lung, liver, hepatocellular_carcinoma, breast, colorectal, large_intestine or thyroid"`
	Gene       string   `json:"gene,omitempty" jsonschema:"optional HGNC gene symbol restricting the match"`
	Variants   []string `json:"variants" jsonschema:"variant descriptors, for example L858R or NM_004958.4(PIK3CA):c.1633G>A"`
	Page       int      `json:"page,omitempty" jsonschema:"1-based page number"`
	Limit      int      `json:"limit,omitempty" jsonschema:"page size"`
}

// ExtractVariantPatternsParams defines parameters for the extract_variant_patterns tool
type ExtractVariantPatternsParams struct {
	Variant string `json:"variant" jsonschema:"variant descriptor"`
}

// ExtractVariantPatternsResult lists the patterns derived from a descriptor
type ExtractVariantPatternsResult struct {
	Variant  string             `json:"variant"`
	RefSeq   string             `json:"ref_seq,omitempty"`
	Patterns []domain.Predicate `json:"patterns"`
}

// handleSearchDrugByVariant handles the search_drug_by_variant tool invocation
func (s *Server) handleSearchDrugByVariant(ctx context.Context, req *mcp.CallToolRequest, params SearchDrugByVariantParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithFields(logrus.Fields{
		"tool":        "search_drug_by_variant",
		"cancer_type": params.CancerType,
		"variants":    len(params.Variants),
	}).Info("Tool invoked")

	page := service.NewPageParams(params.Page, params.Limit, s.config.VariantPageSize, s.config.MaxPageSize)
	result, err := s.matcher.SearchByVariant(ctx, &domain.SearchByVariantRequest{
		CancerType: params.CancerType,
		Gene:       params.Gene,
		Variants:   params.Variants,
	}, page)
	if err != nil {
		return s.createErrorResult("Search failed", err), nil, nil
	}

	text, err := json.Marshal(result)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding search result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Found %d matching alterations (page %d of %d)", result.TotalItems, result.Page, result.TotalPages)},
			&mcp.TextContent{Text: string(text)},
		},
	}, result, nil
}

// handleExtractVariantPatterns handles the extract_variant_patterns tool invocation
func (s *Server) handleExtractVariantPatterns(ctx context.Context, req *mcp.CallToolRequest, params ExtractVariantPatternsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "extract_variant_patterns").Info("Tool invoked")

	if params.Variant == "" {
		return s.createErrorResult("Missing required parameter", fmt.Errorf("variant is required")), nil, nil
	}

	result := ExtractVariantPatternsResult{
		Variant:  params.Variant,
		RefSeq:   hgvs.ExtractRefSeq(params.Variant),
		Patterns: hgvs.ExtractPatterns(params.Variant),
	}

	text, err := json.Marshal(result)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding patterns: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(text)},
		},
	}, result, nil
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
