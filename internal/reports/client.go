// Package reports renders listing exports (CSV/PDF) through the external
// report service and delivers the files via S3 pre-signed URLs. Report
// failures surface to the caller only; they never touch stored data.
package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Export formats accepted by the renderer.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// RenderRequest is the body sent to the report service.
type RenderRequest struct {
	Format   string     `json:"format"`
	FileName string     `json:"file_name"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
}

// RenderResult is the renderer's output: either a ready URL or raw file
// bytes to upload ourselves.
type RenderResult struct {
	URL   string
	Bytes []byte
}

// Client calls the external report renderer over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a report service client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Render posts the table to the report service. A JSON response carries a
// hosted file URL; any other content type is the file body itself.
func (c *Client) Render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("report service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("report service error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(snippet)))
		return nil, fmt.Errorf("report service returned %d", resp.StatusCode)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var out struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode render response: %w", err)
		}
		if out.URL == "" {
			return nil, fmt.Errorf("report service returned no url")
		}
		return &RenderResult{URL: out.URL}, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rendered file: %w", err)
	}
	return &RenderResult{Bytes: raw}, nil
}
