package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"search-insight-miner/config"
)

// ErrMissingAPIKey is returned when DEEPSEEK_API_KEY is not configured.
var ErrMissingAPIKey = errors.New("DeepSeek API key is missing. Please configure it as an environment variable.")

// Summarizer turns the analysis payload into the raw JSON reply content.
type Summarizer interface {
	Summarize(ctx context.Context, data []Item, instructions string) (string, error)
}

// DeepSeek talks to the OpenAI-compatible DeepSeek chat API.
type DeepSeek struct {
	client *openai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewDeepSeek(cfg *config.Config, logger *zap.SugaredLogger) *DeepSeek {
	if strings.TrimSpace(cfg.DeepSeek.APIKey) == "" {
		logger.Warnw("deepseek_api_key_missing")
		return &DeepSeek{model: cfg.DeepSeek.Model, logger: logger}
	}

	oc := openai.DefaultConfig(cfg.DeepSeek.APIKey)
	if cfg.DeepSeek.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.DeepSeek.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{
		Timeout:   cfg.DeepSeek.Timeout,
		Transport: errorBodyTransport{base: http.DefaultTransport},
	}

	return &DeepSeek{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.DeepSeek.Model,
		logger: logger,
	}
}

func (d *DeepSeek) Summarize(ctx context.Context, data []Item, instructions string) (string, error) {
	if d.client == nil {
		return "", ErrMissingAPIKey
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	raw := &errorBody{}
	ctx = context.WithValue(ctx, errorBodyKey{}, raw)

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: openingMessage},
			{Role: openai.ChatMessageRoleAssistant, Content: assistantMessage},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Data: %s. Instructions: %s", payload, instructions)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", apiError(err, raw.text)
	}

	d.logger.Infow("deepseek_response_received",
		"id", resp.ID,
		"choices", len(resp.Choices),
		"total_tokens", resp.Usage.TotalTokens,
	)

	if len(resp.Choices) == 0 {
		return "", invalid("Missing 'choices' in DeepSeek response.")
	}
	return resp.Choices[0].Message.Content, nil
}

// apiError reports a non-2xx reply as status plus the raw response body.
func apiError(err error, body string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if body == "" {
			body = apiErr.Message
		}
		return fmt.Errorf("DeepSeek API call failed with status %d: %s", apiErr.HTTPStatusCode, body)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if body == "" {
			body = strings.TrimSpace(string(reqErr.Body))
		}
		return fmt.Errorf("DeepSeek API call failed with status %d: %s", reqErr.HTTPStatusCode, body)
	}
	return fmt.Errorf("DeepSeek API call failed: %w", err)
}

type errorBodyKey struct{}

type errorBody struct {
	text string
}

// errorBodyTransport copies non-2xx bodies into the errorBody carried by the
// request context; the client still decodes the original bytes.
type errorBodyTransport struct {
	base http.RoundTripper
}

func (t errorBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return resp, err
	}
	holder, ok := req.Context().Value(errorBodyKey{}).(*errorBody)
	if !ok {
		return resp, nil
	}

	b, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("read error body: %w", readErr)
	}
	holder.text = strings.TrimSpace(string(b))
	resp.Body = io.NopCloser(bytes.NewReader(b))
	return resp, nil
}

var _ Summarizer = (*DeepSeek)(nil)
