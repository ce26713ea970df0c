package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"app-hub/internal/domain"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultModel   = "gemini-2.5-flash-preview-09-2025"
	fallbackText   = "Sorry, I couldn't process that query."
	maxErrorBody   = 2048
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    xray.Client(&http.Client{Timeout: cfg.Timeout}),
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content        `json:"contents"`
	Tools    []map[string]any `json:"tools"`
}

// UpstreamError carries the provider status for logging; it unwraps to ErrBadGateway.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini returned status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return domain.ErrBadGateway }

// Generate sends query with Google Search grounding enabled. No retries are attempted.
func (c *Client) Generate(ctx context.Context, query string) (domain.ChatReply, error) {
	if c.apiKey == "" {
		return domain.ChatReply{}, domain.ErrConfiguration
	}
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: query}}}},
		Tools:    []map[string]any{{"google_search": map[string]any{}}},
	})
	if err != nil {
		return domain.ChatReply{}, fmt.Errorf("encode gemini request: %w: %w", domain.ErrInternal, err)
	}
	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.ChatReply{}, fmt.Errorf("build gemini request: %w: %w", domain.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// strip the URL, it carries the key
		return domain.ChatReply{}, fmt.Errorf("call gemini: %w", domain.ErrInternal)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.ChatReply{}, &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ChatReply{}, fmt.Errorf("read gemini response: %w: %w", domain.ErrInternal, err)
	}
	return ParseResponse(raw)
}

// ParseResponse reshapes a generateContent payload into text plus grounding sources.
func ParseResponse(raw []byte) (domain.ChatReply, error) {
	if !gjson.ValidBytes(raw) {
		return domain.ChatReply{}, fmt.Errorf("parse gemini response: %w", domain.ErrInternal)
	}
	candidate := gjson.GetBytes(raw, "candidates.0")

	text := candidate.Get("content.parts.0.text").String()
	if text == "" {
		text = fallbackText
	}

	reply := domain.ChatReply{Text: text, Sources: []domain.ChatSource{}}
	seen := map[string]bool{}
	collect := func(path string) {
		candidate.Get(path).ForEach(func(_, entry gjson.Result) bool {
			uri := entry.Get("web.uri").String()
			title := entry.Get("web.title").String()
			if uri != "" && title != "" && !seen[uri] {
				seen[uri] = true
				reply.Sources = append(reply.Sources, domain.ChatSource{URI: uri, Title: title})
			}
			return true
		})
	}
	collect("groundingMetadata.groundingAttributions")
	collect("groundingMetadata.groundingChunks")
	return reply, nil
}
