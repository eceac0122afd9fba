package service

import (
	"strings"
	"testing"
	"time"

	"scanner_backend/internal/vision"
)

func TestParseAnalysisFloorsLowScores(t *testing.T) {
	parsed := ParseAnalysis(`{"suitability_score": 40, "market_categorization": {"primary": "Fitness"}}`)

	if parsed.Score != vision.MinimumScore {
		t.Fatalf("score = %d, want %d", parsed.Score, vision.MinimumScore)
	}
	if parsed.Category != "Fitness" {
		t.Fatalf("category = %q", parsed.Category)
	}
}

func TestParseAnalysisKeepsHighScores(t *testing.T) {
	parsed := ParseAnalysis(`{"suitability_score": 83, "market_categorization": {"primary": "High Fashion"}}`)

	if parsed.Score != 83 {
		t.Fatalf("score = %d", parsed.Score)
	}
	if parsed.Category != "High Fashion" {
		t.Fatalf("category = %q", parsed.Category)
	}
}

func TestParseAnalysisBareStringCategory(t *testing.T) {
	parsed := ParseAnalysis(`{"suitability_score": 78, "market_categorization": "Commercial"}`)

	if parsed.Category != "Commercial" {
		t.Fatalf("category = %q", parsed.Category)
	}
}

func TestParseAnalysisMalformedPayload(t *testing.T) {
	for _, raw := range []string{"", "not json", `[1,2,3]`, `{"suitability_score": "high"}`} {
		parsed := ParseAnalysis(raw)
		if parsed.Score != vision.MinimumScore {
			t.Errorf("ParseAnalysis(%q).Score = %d", raw, parsed.Score)
		}
		if parsed.Category != vision.CategoryUnknown {
			t.Errorf("ParseAnalysis(%q).Category = %q", raw, parsed.Category)
		}
		if parsed.JSON == "" {
			t.Errorf("ParseAnalysis(%q) produced empty stored document", raw)
		}
	}
}

func TestParseAnalysisPreservesValidDocument(t *testing.T) {
	raw := `{"suitability_score": 81, "market_categorization": {"primary": "Lifestyle"}, "scout_feedback": "Great look."}`
	parsed := ParseAnalysis(raw)

	if parsed.JSON != raw {
		t.Fatalf("stored document rewritten: %q", parsed.JSON)
	}
}

func TestImageObjectKey(t *testing.T) {
	now := time.Unix(1700000000, 0)

	key := ImageObjectKey("jane.doe@example.com", "image/jpeg", now)
	if key != "jane-doe-at-example-com_1700000000.jpeg" {
		t.Fatalf("key = %q", key)
	}

	key = ImageObjectKey("a@b.io", "image/png", now)
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("key = %q", key)
	}
}

func TestBuildRecordDefaults(t *testing.T) {
	record := BuildRecord(BuildRecordParams{
		FirstName:       "Jane",
		Email:           "jane@example.com",
		AnalysisData:    `{"suitability_score": 40, "market_categorization": {"primary": "Fitness"}}`,
		WantsAssessment: "true",
	})

	if record.Score != vision.MinimumScore {
		t.Fatalf("score = %d", record.Score)
	}
	if record.Category != "Fitness" {
		t.Fatalf("category = %q", record.Category)
	}
	if !record.WantsAssessment {
		t.Fatal("wants assessment not set")
	}
	if record.WebhookStatus != "pending" {
		t.Fatalf("webhook status = %q", record.WebhookStatus)
	}
}

func TestBuildRecordWantsAssessmentIsStrict(t *testing.T) {
	for _, v := range []string{"True", "1", "yes", ""} {
		record := BuildRecord(BuildRecordParams{WantsAssessment: v})
		if record.WantsAssessment {
			t.Errorf("wants_assessment %q should not count as true", v)
		}
	}
}
