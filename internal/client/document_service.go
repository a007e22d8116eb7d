// Package client holds plain net/http clients for the sibling services this
// module depends on: the Document Service (artifact metadata + file bytes)
// and the Repository Service (artifact metadata + branch archives).
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Attachment is one file attached to a document. A document may carry
// several revisions of the same upload; Order distinguishes them.
type Attachment struct {
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Order    int    `json:"order"`
}

// DocumentMetadata is the subset of the Document Service's representation
// this module needs to drive indexing.
type DocumentMetadata struct {
	ID          string       `json:"id"`
	Attachments []Attachment `json:"attachments"`
}

// LatestAttachment returns the attachment with the maximum Order, or the
// zero value if there are none (spec.md §3's ArtifactRef invariant).
func (m DocumentMetadata) LatestAttachment() (Attachment, bool) {
	if len(m.Attachments) == 0 {
		return Attachment{}, false
	}
	latest := m.Attachments[0]
	for _, a := range m.Attachments[1:] {
		if a.Order > latest.Order {
			latest = a
		}
	}
	return latest, true
}

// DocumentServiceClient fetches document metadata and raw file bytes over
// plain HTTP, bearer-token authenticated.
type DocumentServiceClient struct {
	baseURL     string
	client      *http.Client
	tokenSource TokenSource
}

// NewDocumentServiceClient builds a DocumentServiceClient. ts may be nil, in
// which case requests are sent unauthenticated.
func NewDocumentServiceClient(baseURL string, ts TokenSource) *DocumentServiceClient {
	return &DocumentServiceClient{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		tokenSource: ts,
	}
}

// GetDocument fetches an artifact's metadata: GET /api/v1/document/{id}.
func (c *DocumentServiceClient) GetDocument(ctx context.Context, id string) (DocumentMetadata, error) {
	var meta DocumentMetadata
	url := fmt.Sprintf("%s/api/v1/document/%s", c.baseURL, id)
	body, err := c.get(ctx, url)
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return meta, fmt.Errorf("decode document metadata: %w", err)
	}
	return meta, nil
}

// GetFile fetches an artifact's raw bytes: GET /api/v1/file/{path}.
func (c *DocumentServiceClient) GetFile(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/api/v1/file/%s", c.baseURL, path)
	return c.get(ctx, url)
}

func (c *DocumentServiceClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.tokenSource != nil {
		token, err := c.tokenSource.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch bearer token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d: %s", url, resp.StatusCode, string(body))
	}
	return body, nil
}
