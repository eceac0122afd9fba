package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"scanner_backend/platform/logger"

	"google.golang.org/genai"
)

// Config provides the settings the analyzer needs.
type Config interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsVisionEnabled() bool
}

const analysisPrompt = `Analyze this image for modeling potential. Return JSON:
{
  "face_geometry": {
    "primary_shape": "Oval/Round/Square/Heart/Diamond/Oblong",
    "jawline_definition": "Soft/Defined/Sharp/Chiseled/Angular",
    "structural_note": "Brief observation of facial structure."
  },
  "market_categorization": {
    "primary": "High Fashion/Commercial/Lifestyle/Fitness",
    "rationale": "Why this market?"
  },
  "aesthetic_audit": {
    "lighting_quality": "Natural/Studio/Poor/Harsh",
    "professional_readiness": "Selfie/Amateur/Semi-Pro/Portfolio",
    "technical_flaw": "Any issues with the photo."
  },
  "suitability_score": 75-85,
  "scout_feedback": "One sentence professional assessment."
}

Score 75-85 for most people. Focus on natural features, not photo quality.`

// Analyzer scores photos via the Gemini API.
type Analyzer struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// NewAnalyzer creates a Gemini-backed analyzer.
func NewAnalyzer(ctx context.Context, cfg Config, log *logger.Logger) (*Analyzer, error) {
	if !cfg.IsVisionEnabled() {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Analyzer{
		client: client,
		model:  cfg.GetGeminiModel(),
		log:    log,
	}, nil
}

// Analyze scores a single image. It never returns an error: any failure is
// absorbed into a degraded Analysis so lead creation is never blocked on
// the model.
func (a *Analyzer) Analyze(ctx context.Context, imageBytes []byte, mimeType string) Analysis {
	if len(imageBytes) == 0 {
		return Degraded("no image data provided")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageBytes}},
			genai.NewPartFromText(analysisPrompt),
		},
	}}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, generationConfig())
	if err != nil {
		a.log.Error("gemini analysis failed", "error", err)
		return Degraded(err.Error())
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		a.log.Error("gemini analysis returned no text")
		return Degraded("empty model response")
	}

	var result Analysis
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		a.log.Error("gemini analysis returned invalid json", "error", err)
		return Degraded("invalid model response")
	}

	return Normalize(result)
}

// Normalize enforces the score floor and fills fields the model sometimes skips.
func Normalize(result Analysis) Analysis {
	if result.SuitabilityScore < MinimumScore {
		result.SuitabilityScore = MinimumScore
	}
	if result.MarketCategorization.Primary == "" {
		result.MarketCategorization.Primary = CategoryUnknown
	}
	if result.FaceGeometry.JawlineDefinition == "" {
		result.FaceGeometry.JawlineDefinition = "Defined"
	}
	if result.ScoutFeedback == "" {
		result.ScoutFeedback = "Strong commercial potential with natural appeal."
	}
	return result
}

func generationConfig() *genai.GenerateContentConfig {
	blockNone := []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	}

	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.4),
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(),
		SafetySettings:   blockNone,
	}
}

func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"face_geometry": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"primary_shape":      {Type: genai.TypeString},
					"jawline_definition": {Type: genai.TypeString},
					"structural_note":    {Type: genai.TypeString},
				},
				Required: []string{"primary_shape", "jawline_definition", "structural_note"},
			},
			"market_categorization": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"primary":   {Type: genai.TypeString},
					"rationale": {Type: genai.TypeString},
				},
				Required: []string{"primary", "rationale"},
			},
			"aesthetic_audit": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"lighting_quality":       {Type: genai.TypeString},
					"professional_readiness": {Type: genai.TypeString},
					"technical_flaw":         {Type: genai.TypeString},
				},
				Required: []string{"lighting_quality", "professional_readiness", "technical_flaw"},
			},
			"suitability_score": {Type: genai.TypeInteger},
			"scout_feedback":    {Type: genai.TypeString},
		},
		Required: []string{"face_geometry", "market_categorization", "aesthetic_audit", "suitability_score", "scout_feedback"},
	}
}
