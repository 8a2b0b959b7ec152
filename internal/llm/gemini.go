package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-pro"

// GeminiClient is a Gemini implementation of the Completer interface.
type GeminiClient struct {
	models generator
	model  string
	config *genai.GenerateContentConfig
}

// generator is the slice of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewGeminiClient creates a GeminiClient. Safety filtering is relaxed so the
// model itself decides whether to answer; prompts can still be blocked.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newGeminiClient(client.Models, model), nil
}

func newGeminiClient(models generator, model string) *GeminiClient {
	return &GeminiClient{
		models: models,
		model:  model,
		config: &genai.GenerateContentConfig{
			SafetySettings: []*genai.SafetySetting{
				{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
				{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
				{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
				{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
			},
		},
	}
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// Complete sends prompt to Gemini and returns the trimmed response text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", translateError(err)
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		feedback := string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			feedback += ": " + fb.BlockReasonMessage
		}
		return "", &BlockedError{Feedback: feedback}
	}
	if len(resp.Candidates) > 0 {
		if feedback, blocked := candidateBlock(resp.Candidates[0]); blocked {
			return "", &BlockedError{Feedback: feedback}
		}
	}

	return strings.TrimSpace(resp.Text()), nil
}

// candidateBlock reports whether the first candidate was withheld by a
// safety filter, with its finish reason and any flagged ratings.
func candidateBlock(c *genai.Candidate) (string, bool) {
	if c == nil {
		return "", false
	}
	switch c.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent,
		genai.FinishReasonBlocklist, genai.FinishReasonSPII:
	default:
		return "", false
	}

	var flagged []string
	for _, r := range c.SafetyRatings {
		if r == nil || (!r.Blocked && r.Probability != genai.HarmProbabilityHigh && r.Probability != genai.HarmProbabilityMedium) {
			continue
		}
		flagged = append(flagged, fmt.Sprintf("%s=%s", r.Category, r.Probability))
	}
	feedback := string(c.FinishReason)
	if len(flagged) > 0 {
		feedback += " (" + strings.Join(flagged, ", ") + ")"
	}
	return feedback, true
}

func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Code: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &APIError{Code: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("gemini request failed: %w", err)
}
