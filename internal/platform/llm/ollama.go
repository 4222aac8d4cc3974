// Package llm talks to a local Ollama inference server.
package llm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/soudan/casebook/internal/platform/apperr"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
}

// DefaultOptions balance variety against staying on the requested format.
var DefaultOptions = Options{Temperature: 0.7, TopP: 0.9, TopK: 40}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  Options   `json:"options"`
}

type chatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Model struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	Modified string `json:"modified"`
}

type tagsResponse struct {
	Models []struct {
		Name       string `json:"name"`
		Model      string `json:"model"`
		Size       int64  `json:"size"`
		ModifiedAt string `json:"modified_at"`
	} `json:"models"`
}

// Client calls the chat and tags endpoints. Calls are never retried; any
// failure comes back as an upstream error.
type Client struct {
	http         *resty.Client
	defaultModel string
}

func NewClient(baseURL string, timeout time.Duration, defaultModel string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: c, defaultModel: defaultModel}
}

func (c *Client) DefaultModel() string { return c.defaultModel }

// Chat sends one non-streaming chat request and returns the reply text.
// An empty model selects the default model.
func (c *Client) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	if model == "" {
		model = c.defaultModel
	}
	var out chatResponse
	var failure errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{Model: model, Messages: messages, Stream: false, Options: DefaultOptions}).
		SetResult(&out).
		SetError(&failure).
		Post("/api/chat")
	if err != nil {
		return "", apperr.Upstream("inference server unreachable", err)
	}
	if resp.IsError() {
		return "", apperr.Upstream("inference server error", statusError(resp.StatusCode(), failure.Error))
	}
	if out.Message.Content == "" {
		return "", apperr.Upstream("inference server returned an empty reply", nil)
	}
	return out.Message.Content, nil
}

// Models lists the models installed on the server.
func (c *Client) Models(ctx context.Context) ([]Model, error) {
	var out tagsResponse
	var failure errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&failure).
		Get("/api/tags")
	if err != nil {
		return nil, apperr.Upstream("inference server unreachable", err)
	}
	if resp.IsError() {
		return nil, apperr.Upstream("inference server error", statusError(resp.StatusCode(), failure.Error))
	}
	models := make([]Model, 0, len(out.Models))
	for _, m := range out.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		models = append(models, Model{Name: name, Size: strconv.FormatInt(m.Size, 10), Modified: m.ModifiedAt})
	}
	return models, nil
}

func statusError(status int, msg string) error {
	if msg == "" {
		return fmt.Errorf("status %d", status)
	}
	return fmt.Errorf("status %d: %s", status, msg)
}
