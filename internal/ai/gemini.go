package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements CategoryClassifier using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Use Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"

	// Deterministic output.
	model.SetTemperature(0)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// ClassifyCategory asks the model to map query onto one of slugs.
func (p *GeminiProvider) ClassifyCategory(ctx context.Context, query string, slugs []string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" || len(slugs) == 0 {
		return "", nil
	}

	resp, err := p.model.GenerateContent(ctx, genai.Text(buildClassifyPrompt(query, slugs)))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	return parseClassification(responseText.String(), slugs)
}

// parseClassification validates the raw model output against the offered slugs.
func parseClassification(raw string, slugs []string) (string, error) {
	cleanJSON := cleanJSONString(raw)

	var result ClassificationResult
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return "", fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	if result.Confidence < MinConfidence {
		return "", nil
	}
	got := strings.ToLower(strings.TrimSpace(result.Category))
	for _, s := range slugs {
		if s == got {
			return s, nil
		}
	}
	return "", nil
}

func buildClassifyPrompt(query string, slugs []string) string {
	return fmt.Sprintf(`Role: You classify place-search queries for a map of public amenities in India.

Allowed categories (use the slug exactly as written):
%s

Rules:
1. Pick the ONE category a person typing the query is most likely looking for.
2. If none of the categories fits, return an empty string for "category".
3. Never invent a slug that is not in the list.
4. "confidence" is a number between 0 and 1.

Respond with JSON only: {"category": "<slug or empty>", "confidence": <number>}

Query: %s`, "- "+strings.Join(slugs, "\n- "), query)
}

func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
