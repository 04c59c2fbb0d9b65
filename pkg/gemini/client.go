// Package gemini wraps the google.golang.org/genai SDK behind the
// VisionCompleter contract used by the audio and hook analysis stages.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"

	apperrors "viracoach/pkg/errors"
)

const ProviderName = "gemini"

type Client struct {
	apiKey string
	model  string
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gemini-2.5-pro"
	}
	return &Client{apiKey: apiKey, model: model}
}

// VisionCompletion sends a prompt with inline jpeg attachments and returns
// the raw response text. Missing image files are skipped. Callers must
// tolerate empty or malformed text.
func (c *Client) VisionCompletion(ctx context.Context, prompt string, imagePaths []string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", classifyError(err)
	}

	parts := []*genai.Part{{Text: prompt}}
	for _, path := range imagePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: data},
		})
	}

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.3),
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", classifyError(err)
	}
	if resp == nil {
		return "", apperrors.New(apperrors.CodeMalformedResponse, "Empty Gemini response")
	}
	return resp.Text(), nil
}

// classifyError maps SDK errors onto the structured taxonomy using the HTTP
// status carried by the API error type.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.WrapWithDetail(apperrors.CodeCredentialInvalid,
				"Invalid API credential", ProviderName, err)
		case http.StatusBadRequest:
			// The Gemini API reports an invalid key as 400 INVALID_ARGUMENT.
			// Other 400s (oversized payloads, bad requests) are not
			// credential problems and must stay non-fatal.
			if isKeyComplaint(apiErr.Message) {
				return apperrors.WrapWithDetail(apperrors.CodeCredentialInvalid,
					"Invalid API credential", ProviderName, err)
			}
		case http.StatusTooManyRequests:
			return apperrors.WrapWithDetail(apperrors.CodeLLMQuotaExceeded,
				"LLM quota exceeded", ProviderName, err)
		}
	}

	return apperrors.WrapWithDetail(apperrors.CodeAnalysisFailed, "LLM call failed", ProviderName, err)
}

func isKeyComplaint(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "api key") || strings.Contains(lower, "api_key")
}
