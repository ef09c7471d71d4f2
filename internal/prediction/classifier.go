// internal/prediction/classifier.go
package prediction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"churn-analytics/internal/common/config"
	"churn-analytics/internal/common/errors"
	"churn-analytics/internal/common/llm"
	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/models"
)

// RiskClassifier produces a risk assessment for a customer profile.
// Implementations may fail at any time; callers fall back to
// FallbackScore on any error.
type RiskClassifier interface {
	Classify(ctx context.Context, profile models.CustomerProfile) (models.RiskAssessment, error)
}

// assessmentSchema constrains the classifier's JSON output before it
// is trusted.
const assessmentSchema = `{
	"type": "object",
	"required": ["churnProbability", "riskLevel", "keyFactors", "recommendations", "confidence"],
	"properties": {
		"churnProbability": {"type": "number", "minimum": 0, "maximum": 100},
		"riskLevel": {"type": "string", "enum": ["Low", "Medium", "High"]},
		"keyFactors": {"type": "array", "items": {"type": "string"}},
		"recommendations": {"type": "array", "items": {"type": "string"}},
		"confidence": {"type": "number", "minimum": 0, "maximum": 100}
	}
}`

// HTTPClassifier asks a chat-completions model for an assessment and
// validates the JSON reply before trusting it.
type HTTPClassifier struct {
	config *config.ClassifierConfig
	client *llm.Client
	schema *gojsonschema.Schema
	log    logger.Logger
}

func NewHTTPClassifier(cfg *config.ClassifierConfig, log logger.Logger) (*HTTPClassifier, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(assessmentSchema))
	if err != nil {
		return nil, fmt.Errorf("compile assessment schema: %w", err)
	}
	return &HTTPClassifier{
		config: cfg,
		client: llm.NewClient(cfg),
		schema: schema,
		log: log.WithFields(map[string]interface{}{
			"component": "risk-classifier",
		}),
	}, nil
}

func (c *HTTPClassifier) Classify(ctx context.Context, profile models.CustomerProfile) (models.RiskAssessment, error) {
	content, err := c.client.Complete(ctx, buildRiskPrompt(profile), c.config.Temperature)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	return c.parseAssessment(content)
}

// parseAssessment validates the model reply against assessmentSchema
// before unmarshaling it.
func (c *HTTPClassifier) parseAssessment(content string) (models.RiskAssessment, error) {
	result, err := c.schema.Validate(gojsonschema.NewStringLoader(content))
	if err != nil {
		return models.RiskAssessment{}, errors.NewClassifierMalformedOutputError(err.Error())
	}
	if !result.Valid() {
		details := ""
		for _, desc := range result.Errors() {
			if details != "" {
				details += "; "
			}
			details += desc.String()
		}
		return models.RiskAssessment{}, errors.NewClassifierMalformedOutputError(details)
	}

	var assessment models.RiskAssessment
	if err := json.Unmarshal([]byte(content), &assessment); err != nil {
		return models.RiskAssessment{}, errors.NewClassifierMalformedOutputError(err.Error())
	}
	return assessment, nil
}

func buildRiskPrompt(profile models.CustomerProfile) string {
	profileJSON, _ := json.MarshalIndent(profile, "", "  ")

	return fmt.Sprintf(`Analyze this telecom customer profile and predict churn probability:

Customer Profile:
%s

Based on telecom industry patterns, provide:
1. Churn probability (0-100%%)
2. Risk level (Low/Medium/High)
3. Top 3 key factors contributing to churn risk
4. Top 3 retention recommendations
5. Confidence level (0-100%%)

Consider these churn indicators:
- Short tenure (< 12 months)
- Month-to-month contracts
- High monthly charges
- Electronic check payments
- No additional services
- Senior citizens
- No dependents/partners

Respond in JSON format:
{
  "churnProbability": number,
  "riskLevel": "Low|Medium|High",
  "keyFactors": ["factor1", "factor2", "factor3"],
  "recommendations": ["rec1", "rec2", "rec3"],
  "confidence": number
}`, string(profileJSON))
}
