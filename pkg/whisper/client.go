// Package whisper transcribes audio through the OpenAI-compatible audio API.
package whisper

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/sashabaranov/go-openai"

	"viracoach/internal/types"
	apperrors "viracoach/pkg/errors"
)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseUrl, apiKey, proxyAddr, model string) *Client {
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
	cfg.HTTPClient = &http.Client{Transport: transport}

	if model == "" {
		model = openai.Whisper1
	}

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *Client) Transcribe(ctx context.Context, audioPath string) (*types.Transcript, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden) {
			return nil, apperrors.WrapWithDetail(apperrors.CodeCredentialInvalid,
				"Invalid API credential", "openai", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeTranscribeFailed, "Transcription failed", err)
	}

	transcript := &types.Transcript{Text: resp.Text}
	for _, seg := range resp.Segments {
		transcript.Segments = append(transcript.Segments, types.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return transcript, nil
}
