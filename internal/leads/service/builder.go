// Package service implements lead intake: validation, photo storage, record
// construction and followup dispatch.
package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scanner_backend/internal/adapters/storage"
	"scanner_backend/internal/leads/repository"
	"scanner_backend/internal/vision"
)

// ParsedAnalysis is what the builder extracts from a client-submitted
// analysis payload.
type ParsedAnalysis struct {
	Score    int
	Category string
	JSON     string
}

// ParseAnalysis extracts score and category from the raw analysis JSON the
// client echoes back after scanning. The payload is untrusted: scores are
// floored, the category falls back to Unknown, and unparseable payloads are
// replaced with a degraded analysis document.
func ParseAnalysis(raw string) ParsedAnalysis {
	fallback := ParsedAnalysis{
		Score:    vision.MinimumScore,
		Category: vision.CategoryUnknown,
		JSON:     vision.Degraded("invalid analysis payload").JSON(),
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fallback
	}

	parsed := ParsedAnalysis{
		Score:    vision.MinimumScore,
		Category: vision.CategoryUnknown,
		JSON:     raw,
	}

	if score, ok := doc["suitability_score"].(float64); ok && int(score) > vision.MinimumScore {
		parsed.Score = int(score)
	}

	// market_categorization is usually an object but some clients send the
	// category as a bare string.
	switch mc := doc["market_categorization"].(type) {
	case map[string]any:
		if primary, ok := mc["primary"].(string); ok && primary != "" {
			parsed.Category = primary
		}
	case string:
		if mc != "" {
			parsed.Category = mc
		}
	}

	return parsed
}

// ImageObjectKey derives the storage key for a lead photo from the lead's
// email and the upload time. Emails are flattened into a key-safe form.
func ImageObjectKey(email, contentType string, now time.Time) string {
	safe := strings.ReplaceAll(email, "@", "-at-")
	safe = strings.ReplaceAll(safe, ".", "-")
	return fmt.Sprintf("%s_%d%s", safe, now.Unix(), storage.ExtensionForContentType(contentType))
}

// BuildRecordParams carries the validated submission fields into the builder.
type BuildRecordParams struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	City            string
	ZipCode         string
	Age             int
	Gender          string
	Campaign        string
	AnalysisData    string
	WantsAssessment string
	MarketingOptIn  bool
	ImageKey        string
	ImageURL        string
}

// BuildRecord assembles the repository insert parameters. New leads always
// start in the pending webhook state; wants_assessment only counts when the
// client sent the literal string "true".
func BuildRecord(params BuildRecordParams) repository.CreateLeadParams {
	analysis := ParseAnalysis(params.AnalysisData)

	return repository.CreateLeadParams{
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		Email:           params.Email,
		Phone:           params.Phone,
		City:            params.City,
		ZipCode:         params.ZipCode,
		Age:             params.Age,
		Gender:          params.Gender,
		Campaign:        params.Campaign,
		Score:           analysis.Score,
		Category:        analysis.Category,
		ImageKey:        params.ImageKey,
		ImageURL:        params.ImageURL,
		AnalysisJSON:    analysis.JSON,
		WantsAssessment: params.WantsAssessment == "true",
		MarketingOptIn:  params.MarketingOptIn,
		WebhookStatus:   repository.WebhookStatusPending,
	}
}
