// Package assistant suggests answers for survey questions. Text answers come
// from a generative model; choice answers are drawn from the options.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
)

var (
	ErrNoAPIKey      = errors.New("gemini api key is not configured")
	ErrEmptyResponse = errors.New("gemini returned no text")
)

// Asker answers a question given some background about the survey.
type Asker interface {
	Ask(ctx context.Context, background, question string) (string, error)
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *resty.Client
}

func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    client,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Ask(ctx context.Context, background, question string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", ErrNoAPIKey
	}

	body := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: Prompt(background, question)}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     1,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
		},
	}

	var parsed generateResponse
	var apiErr errorEnvelope
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(&parsed).
		SetError(&apiErr).
		Post(fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if res.IsError() {
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini status %d: %s", res.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini status %d: %s", res.StatusCode(), strings.TrimSpace(string(res.Body())))
	}

	if len(parsed.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Prompt frames a question within its background.
func Prompt(background, question string) string {
	background = strings.TrimSpace(background)
	if background == "" {
		return strings.TrimSpace(question)
	}
	return fmt.Sprintf("in this context: %s, %s", background, strings.TrimSpace(question))
}
