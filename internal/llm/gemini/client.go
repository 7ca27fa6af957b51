// Package gemini calls Google's Generative Language API. It backs the
// project generator and the key verification endpoint.
package gemini

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

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

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
		opts.BaseURL = defaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash"
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

func (c *Client) Name() string { return "gemini" }

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	GenerationConfig  *struct {
		MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat implements llm.ChatProvider. Gemini has no assistant role and keeps
// the system prompt out of the turn list, so messages are remapped.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	if c.apiKey == "" {
		return "", llm.ErrNoAPIKey
	}
	req := generateRequest{}
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			req.SystemInstruction = &content{Parts: []part{{Text: m.Content}}}
		case llm.RoleAssistant:
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}
	out, err := c.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return out, nil
}

// Verify asks for a single token; it succeeds iff the key is usable.
func (c *Client) Verify(ctx context.Context) error {
	if c.apiKey == "" {
		return llm.ErrNoAPIKey
	}
	req := generateRequest{Contents: []content{{Role: "user", Parts: []part{{Text: "ping"}}}}}
	req.GenerationConfig = &struct {
		MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
	}{MaxOutputTokens: 1}
	_, err := c.generate(ctx, req)
	return err
}

func (c *Client) generate(ctx context.Context, payload generateRequest) (string, error) {
	b, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("generate http %d: unparseable body", resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		msg := strings.TrimSpace(string(data))
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("generate http %d: %s", resp.StatusCode, msg)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", llm.ErrEmptyReply
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
