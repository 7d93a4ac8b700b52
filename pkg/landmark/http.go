package landmark

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/teslashibe/go-driveguard/internal/httpc"
)

// HTTPProvider calls a request/response landmark service: one POST per frame,
// JSON in, JSON out. This is the default provider.
type HTTPProvider struct {
	url    string
	apiKey string
	client *http.Client
}

// NewHTTP creates an HTTP landmark provider for the given endpoint.
func NewHTTP(url, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		url:    url,
		apiKey: apiKey,
		client: httpc.Client,
	}
}

// detectRequest is the wire format sent to the landmark service.
type detectRequest struct {
	Image string `json:"image"` // base64-encoded JPEG
}

// detectResponse is the wire format returned by the landmark service.
type detectResponse struct {
	Faces []Face `json:"faces"`
	Error string `json:"error,omitempty"`
}

// Detect sends the frame and returns all faces the service found.
func (p *HTTPProvider) Detect(ctx context.Context, jpeg []byte) ([]Face, error) {
	payload, err := json.Marshal(detectRequest{
		Image: base64.StdEncoding.EncodeToString(jpeg),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("landmark request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("landmark service error (status %d): %s",
			resp.StatusCode, truncate(string(body), 200))
	}

	var result detectResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("landmark service: %s", result.Error)
	}

	return result.Faces, nil
}

// Close releases resources. The shared HTTP client is left alone.
func (p *HTTPProvider) Close() error { return nil }

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ Provider = (*HTTPProvider)(nil)
