// Package vision provides the photo scoring oracle backed by the Gemini API.
// Scoring failures never propagate: callers always receive a valid Analysis,
// degraded to the score floor and the Unknown category when the model
// cannot be reached or returns garbage.
package vision

import "encoding/json"

const (
	// MinimumScore is the policy floor for suitability scores. The model is
	// asked for 75-85 but anything lower is clamped here.
	MinimumScore = 70

	// CategoryUnknown is the sentinel market category used when the model
	// omits or mangles its categorization.
	CategoryUnknown = "Unknown"
)

// FaceGeometry describes facial structure markers.
type FaceGeometry struct {
	PrimaryShape      string `json:"primary_shape"`
	JawlineDefinition string `json:"jawline_definition"`
	StructuralNote    string `json:"structural_note"`
}

// MarketCategorization assigns the subject to a modeling market segment.
type MarketCategorization struct {
	Primary   string `json:"primary"`
	Rationale string `json:"rationale"`
}

// AestheticAudit captures technical photo quality observations.
type AestheticAudit struct {
	LightingQuality       string `json:"lighting_quality"`
	ProfessionalReadiness string `json:"professional_readiness"`
	TechnicalFlaw         string `json:"technical_flaw"`
}

// Analysis is the structured result of scoring one photo.
type Analysis struct {
	FaceGeometry         FaceGeometry         `json:"face_geometry"`
	MarketCategorization MarketCategorization `json:"market_categorization"`
	AestheticAudit       AestheticAudit       `json:"aesthetic_audit"`
	SuitabilityScore     int                  `json:"suitability_score"`
	ScoutFeedback        string               `json:"scout_feedback"`
	Error                string               `json:"error,omitempty"`
}

// JSON serializes the analysis for storage alongside the lead record.
func (a Analysis) JSON() string {
	data, err := json.Marshal(a)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Degraded returns a valid but degraded analysis carrying the failure reason.
// Used whenever the model call fails or produces an unusable response.
func Degraded(reason string) Analysis {
	return Analysis{
		FaceGeometry: FaceGeometry{
			PrimaryShape:      CategoryUnknown,
			JawlineDefinition: CategoryUnknown,
			StructuralNote:    "N/A",
		},
		MarketCategorization: MarketCategorization{
			Primary:   CategoryUnknown,
			Rationale: "Analysis failed.",
		},
		AestheticAudit: AestheticAudit{
			LightingQuality:       CategoryUnknown,
			ProfessionalReadiness: CategoryUnknown,
			TechnicalFlaw:         "Analysis Error",
		},
		SuitabilityScore: MinimumScore,
		ScoutFeedback:    "Analysis failed: " + reason,
		Error:            reason,
	}
}
