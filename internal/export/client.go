package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/joescharf/crowdfund/internal/models"
)

// StatusError is returned when the document service answers with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("document service returned %d %s", e.Code, http.StatusText(e.Code))
}

// Client talks to the external document-generation service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service rooted at baseURL.
// A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type downloadRequest struct {
	FormData models.Draft `json:"formData"`
}

// DownloadURL returns the endpoint used for format f.
func (c *Client) DownloadURL(f Format) string {
	return c.baseURL + "/api/download/" + url.PathEscape(string(f))
}

// Download posts the draft and returns the generated document bytes.
// The response body is never parsed.
func (c *Client) Download(ctx context.Context, f Format, d models.Draft) ([]byte, error) {
	body, err := json.Marshal(downloadRequest{FormData: d})
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.DownloadURL(f), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}
