// internal/campaign/generator.go
package campaign

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

// RecommendationGenerator proposes retention campaigns for a risk
// segment. Implementations may fail at any time; callers substitute
// FallbackRecommendations on any error.
type RecommendationGenerator interface {
	Generate(ctx context.Context, riskLevel string, targetCount int, patterns models.PatternSummary) ([]models.CampaignRecommendation, error)
}

// Campaign ideas want more variety than risk scoring does.
const generatorTemperature = 0.7

const recommendationsSchema = `{
	"type": "object",
	"required": ["recommendations"],
	"properties": {
		"recommendations": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "offerType", "description", "effectiveness"],
				"properties": {
					"name": {"type": "string"},
					"offerType": {"type": "string"},
					"discount": {"type": ["number", "null"]},
					"description": {"type": "string"},
					"effectiveness": {"type": "number", "minimum": 1, "maximum": 10}
				}
			}
		}
	}
}`

// HTTPGenerator asks a chat-completions model for campaign ideas and
// validates the JSON reply before trusting it.
type HTTPGenerator struct {
	client *llm.Client
	schema *gojsonschema.Schema
	log    logger.Logger
}

func NewHTTPGenerator(cfg *config.ClassifierConfig, log logger.Logger) (*HTTPGenerator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(recommendationsSchema))
	if err != nil {
		return nil, fmt.Errorf("compile recommendations schema: %w", err)
	}
	return &HTTPGenerator{
		client: llm.NewClient(cfg),
		schema: schema,
		log: log.WithFields(map[string]interface{}{
			"component": "campaign-generator",
		}),
	}, nil
}

func (g *HTTPGenerator) Generate(ctx context.Context, riskLevel string, targetCount int, patterns models.PatternSummary) ([]models.CampaignRecommendation, error) {
	content, err := g.client.Complete(ctx, buildCampaignPrompt(riskLevel, targetCount, patterns), generatorTemperature)
	if err != nil {
		return nil, err
	}
	return g.parseRecommendations(content)
}

func (g *HTTPGenerator) parseRecommendations(content string) ([]models.CampaignRecommendation, error) {
	result, err := g.schema.Validate(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, errors.NewClassifierMalformedOutputError(err.Error())
	}
	if !result.Valid() {
		details := ""
		for _, desc := range result.Errors() {
			if details != "" {
				details += "; "
			}
			details += desc.String()
		}
		return nil, errors.NewClassifierMalformedOutputError(details)
	}

	var parsed struct {
		Recommendations []models.CampaignRecommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, errors.NewClassifierMalformedOutputError(err.Error())
	}
	return parsed.Recommendations, nil
}

func buildCampaignPrompt(riskLevel string, targetCount int, patterns models.PatternSummary) string {
	servicesJSON, _ := json.Marshal(patterns.InternetServices)

	return fmt.Sprintf(`Generate retention campaign recommendations for %s risk telecom customers.

Customer Analysis:
- Total customers: %d
- Average tenure: %g months
- Average monthly charges: $%g
- Most common contract: %s
- Most common payment method: %s
- Internet service distribution: %s

Generate 3 targeted campaign recommendations with:
1. Campaign name
2. Offer type (discount, upgrade, service addition, etc.)
3. Discount percentage (if applicable)
4. Description
5. Expected effectiveness (1-10)

Respond in JSON format:
{
  "recommendations": [
    {
      "name": "Campaign Name",
      "offerType": "Discount|Upgrade|Service|Contract",
      "discount": number or null,
      "description": "Detailed description",
      "effectiveness": number
    }
  ]
}`, riskLevel, targetCount, patterns.AvgTenure, patterns.AvgMonthlyCharges,
		patterns.MostCommonContract, patterns.MostCommonPayment, string(servicesJSON))
}
