// Package openai talks to any OpenAI-compatible chat completions endpoint,
// which covers OpenAI itself plus local runtimes such as LM Studio and Ollama.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ValorSage/ai-app-builder/internal/llm"
)

type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		http:    &http.Client{Timeout: opts.Timeout},
	}
}

func (c *Client) Name() string { return "openai" }

// Chat implements llm.ChatProvider via POST /chat/completions.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	if c.apiKey == "" && strings.Contains(c.baseURL, "api.openai.com") {
		return "", llm.ErrNoAPIKey
	}
	reqBody := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": 0.2,
	}
	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.do(req, b)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat http %d: %s", resp.StatusCode, string(data))
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyReply
	}
	return out.Choices[0].Message.Content, nil
}

// Verify lists models as a cheap credential check.
func (c *Client) Verify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("verify http %d: %s", resp.StatusCode, string(data))
	}
	return nil
}

// do retries on 429 and 5xx with simple backoff. The request body is rebuilt
// per attempt because http.Request bodies are single-use.
func (c *Client) do(req *http.Request, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := 200 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			req = req.Clone(req.Context())
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		resp, err = c.http.Do(req)
		if err != nil {
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode/100 == 5 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			err = fmt.Errorf("chat http %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, err
}
