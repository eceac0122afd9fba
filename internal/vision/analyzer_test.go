package vision

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeEnforcesScoreFloor(t *testing.T) {
	result := Normalize(Analysis{SuitabilityScore: 42})
	if result.SuitabilityScore != MinimumScore {
		t.Fatalf("expected floor %d, got %d", MinimumScore, result.SuitabilityScore)
	}

	result = Normalize(Analysis{SuitabilityScore: 83})
	if result.SuitabilityScore != 83 {
		t.Fatalf("expected score 83 preserved, got %d", result.SuitabilityScore)
	}
}

func TestNormalizeFillsMissingFields(t *testing.T) {
	result := Normalize(Analysis{SuitabilityScore: 80})

	if result.MarketCategorization.Primary != CategoryUnknown {
		t.Fatalf("expected category %q, got %q", CategoryUnknown, result.MarketCategorization.Primary)
	}
	if result.FaceGeometry.JawlineDefinition != "Defined" {
		t.Fatalf("expected default jawline, got %q", result.FaceGeometry.JawlineDefinition)
	}
	if result.ScoutFeedback == "" {
		t.Fatal("expected default scout feedback")
	}
}

func TestDegradedCarriesReason(t *testing.T) {
	result := Degraded("connection refused")

	if result.SuitabilityScore != MinimumScore {
		t.Fatalf("expected floor score, got %d", result.SuitabilityScore)
	}
	if result.MarketCategorization.Primary != CategoryUnknown {
		t.Fatalf("expected unknown category, got %q", result.MarketCategorization.Primary)
	}
	if !strings.Contains(result.ScoutFeedback, "connection refused") {
		t.Fatalf("expected reason in feedback, got %q", result.ScoutFeedback)
	}
	if result.Error != "connection refused" {
		t.Fatalf("expected error field set, got %q", result.Error)
	}
}

func TestAnalysisJSONRoundTrips(t *testing.T) {
	original := Degraded("timeout")

	var decoded Analysis
	if err := json.Unmarshal([]byte(original.JSON()), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.SuitabilityScore != original.SuitabilityScore {
		t.Fatalf("score mismatch: %d != %d", decoded.SuitabilityScore, original.SuitabilityScore)
	}
	if decoded.Error != "timeout" {
		t.Fatalf("expected error preserved, got %q", decoded.Error)
	}
}
