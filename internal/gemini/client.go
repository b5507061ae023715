// Package gemini adapts the Gemini generateContent API to assistant.Model.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/m3rciful/vedbot/core/netutil"
	"github.com/m3rciful/vedbot/internal/assistant"
)

// Config configures the client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, e.g. for a regional proxy.
	BaseURL string
	// Timeout bounds the wait for the response headers. Zero waits forever;
	// the assistant bounds the whole call with its own context.
	Timeout time.Duration
	// HTTPClient overrides the transport; nil builds one without retries.
	HTTPClient *http.Client
}

// httpOptions builds a single-shot transport: the assistant never retries a
// question.
func (cfg Config) httpOptions() netutil.ClientOptions {
	opts := netutil.ClientOptions{Name: "gemini", Timeout: -1, ResponseTimeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		opts.ResponseTimeout = -1
	}
	return opts
}

// Client calls a single Gemini model.
type Client struct {
	models *genai.Models
	model  string
}

// New creates a client for the Gemini developer API.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini: model is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = netutil.BuildHTTPClient(cfg.httpOptions())
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  hc,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Client{models: c.Models, model: cfg.Model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Generate implements assistant.Model.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classify(err)
	}
	return textOf(resp)
}

func textOf(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", &assistant.Error{Kind: assistant.KindMalformed, Message: "nil response"}
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", &assistant.Error{Kind: assistant.KindMalformed, Message: "prompt blocked: " + string(fb.BlockReason)}
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		reason := "no text in response"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			reason += ", finish reason " + string(resp.Candidates[0].FinishReason)
		}
		return "", &assistant.Error{Kind: assistant.KindMalformed, Message: reason}
	}
	return text, nil
}

// classify maps SDK and transport errors onto assistant error kinds.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &assistant.Error{Kind: assistant.KindTransport, Err: err}
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		kind := assistant.KindUpstream
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			kind = assistant.KindQuota
		}
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = apiErr.Status
		}
		return &assistant.Error{Kind: kind, Message: fmt.Sprintf("%d %s", apiErr.Code, msg), Err: err}
	}
	if netutil.ShouldRetry(err) {
		return &assistant.Error{Kind: assistant.KindTransport, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &assistant.Error{Kind: assistant.KindTransport, Err: err}
	}
	return &assistant.Error{Kind: assistant.KindUpstream, Err: err}
}
