package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/sashabaranov/go-openai"

	apperrors "viracoach/pkg/errors"
)

const ProviderName = "openai"

type Client struct {
	client      *openai.Client
	chatModel   string
	visionModel string
}

func NewClient(baseUrl, apiKey, proxyAddr, chatModel, visionModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	transport := &http.Transport{}
	if proxyAddr != "" {
		if proxyUrl, err := url.Parse(proxyAddr); err == nil {
			transport.Proxy = http.ProxyURL(proxyUrl)
		}
	}

	// No client timeout: vision calls over several images can run long.
	cfg.HTTPClient = &http.Client{Transport: transport}

	return &Client{
		client:      openai.NewClientWithConfig(cfg),
		chatModel:   chatModel,
		visionModel: visionModel,
	}
}

// ChatCompletion sends a text-only prompt with an evaluator system role and
// returns the raw response text.
func (c *Client) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: 0.4,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a professional short-video quality evaluator."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.CodeMalformedResponse, "Empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// VisionCompletion sends a prompt plus local jpeg files as inline data URLs.
// Missing image files are skipped rather than failing the whole call.
func (c *Client) VisionCompletion(ctx context.Context, prompt string, imagePaths []string) (string, error) {
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: prompt},
	}
	for _, path := range imagePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(data)),
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.visionModel,
		Temperature: 0.2,
		MaxTokens:   400,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.CodeMalformedResponse, "Empty vision response")
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyError maps SDK errors onto the structured taxonomy using the HTTP
// status carried by the API error type, not message keywords.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.WrapWithDetail(apperrors.CodeCredentialInvalid,
				"Invalid API credential", ProviderName, err)
		case http.StatusTooManyRequests:
			return apperrors.WrapWithDetail(apperrors.CodeLLMQuotaExceeded,
				"LLM quota exceeded", ProviderName, err)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusUnauthorized || reqErr.HTTPStatusCode == http.StatusForbidden {
			return apperrors.WrapWithDetail(apperrors.CodeCredentialInvalid,
				"Invalid API credential", ProviderName, err)
		}
	}

	return apperrors.WrapWithDetail(apperrors.CodeAnalysisFailed, "LLM call failed", ProviderName, err)
}
