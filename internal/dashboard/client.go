package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"tinylink/internal/dto"
	"tinylink/internal/model"
	"tinylink/response"
)

const maxErrorBody = 4 << 10

// APIError is a non-2xx answer from the links API.
type APIError struct {
	Status int
	// Message is the server's {"error"} text, else the raw body. May be empty.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Client talks to the /api/links endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client rooted at baseURL (e.g. "http://127.0.0.1:8080").
// A nil hc gets a client with a 5s timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) ListLinks(ctx context.Context) ([]model.Link, error) {
	links := make([]model.Link, 0)
	if err := c.do(ctx, http.MethodGet, "/api/links", nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (c *Client) CreateLink(ctx context.Context, code, target string) (*model.Link, error) {
	var link model.Link
	req := dto.CreateLinkRequest{Code: code, URL: target}
	if err := c.do(ctx, http.MethodPost, "/api/links", req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) GetLink(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := c.do(ctx, http.MethodGet, "/api/links/"+url.PathEscape(code), nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) DeleteLink(ctx context.Context, code string) error {
	var ok response.OKBody
	return c.do(ctx, http.MethodDelete, "/api/links/"+url.PathEscape(code), nil, &ok)
}

func (c *Client) DailyStats(ctx context.Context, code string) ([]model.DailyStat, error) {
	var out dto.DailyStatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/links/"+url.PathEscape(code)+"/stats", nil, &out); err != nil {
		return nil, err
	}
	return out.Days, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if lang, ok := ctx.Value(acceptLanguageKey{}).(string); ok && lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body response.ErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}

type acceptLanguageKey struct{}

// WithAcceptLanguage makes the client forward lang so API errors come back localized.
func WithAcceptLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, acceptLanguageKey{}, lang)
}
