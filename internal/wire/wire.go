// Package wire holds the JSON request/response shapes for the HTTP ingress
// and the conversions to and from the core domain types (§4.10). Outbound
// JSON always uses camelCase; inbound requests accept either camelCase or
// snake_case for the same field (§6, §9), since upstream callers are not
// guaranteed to agree on a convention.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/manak-ai/retrieval/internal/domain"
)

func rawField(raw map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func stringField(raw map[string]json.RawMessage, keys ...string) string {
	v, ok := rawField(raw, keys...)
	if !ok {
		return ""
	}
	var s string
	_ = json.Unmarshal(v, &s)
	return s
}

func intField(raw map[string]json.RawMessage, keys ...string) int {
	v, ok := rawField(raw, keys...)
	if !ok {
		return 0
	}
	var n int
	_ = json.Unmarshal(v, &n)
	return n
}

func stringSliceField(raw map[string]json.RawMessage, keys ...string) []string {
	v, ok := rawField(raw, keys...)
	if !ok {
		return nil
	}
	var out []string
	_ = json.Unmarshal(v, &out)
	return out
}

func decodeRaw(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// DocumentRequest is the body of POST /document.
type DocumentRequest struct {
	DocumentID string `json:"documentId"`
}

func (r *DocumentRequest) UnmarshalJSON(data []byte) error {
	raw, err := decodeRaw(data)
	if err != nil {
		return err
	}
	r.DocumentID = stringField(raw, "documentId", "document_id")
	return nil
}

// DocumentResponse is the body returned by POST /document.
type DocumentResponse struct {
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
}

// RepositoryRequest is the body of POST /repository. Branch is optional; an
// empty Branch means "index the repository's default branch".
type RepositoryRequest struct {
	RepositoryID string `json:"repositoryId"`
	Branch       string `json:"branch,omitempty"`
}

func (r *RepositoryRequest) UnmarshalJSON(data []byte) error {
	raw, err := decodeRaw(data)
	if err != nil {
		return err
	}
	r.RepositoryID = stringField(raw, "repositoryId", "repository_id")
	r.Branch = stringField(raw, "branch")
	return nil
}

// RepositoryResponse is the body returned by POST /repository.
type RepositoryResponse struct {
	RepositoryID string `json:"repositoryId"`
	Status       string `json:"status"`
}

// QueryRequest is the body shared by the four overview/chunk query
// endpoints.
type QueryRequest struct {
	Query       string   `json:"query"`
	TopK        int      `json:"topK,omitempty"`
	ArtifactIDs []string `json:"artifactIds,omitempty"`
}

func (q *QueryRequest) UnmarshalJSON(data []byte) error {
	raw, err := decodeRaw(data)
	if err != nil {
		return err
	}
	q.Query = stringField(raw, "query")
	q.TopK = intField(raw, "topK", "top_k")
	q.ArtifactIDs = stringSliceField(raw, "artifactIds", "artifact_ids")
	return nil
}

// ToDomain converts a wire QueryRequest to the core domain.QueryRequest.
func (q QueryRequest) ToDomain() domain.QueryRequest {
	out := domain.QueryRequest{Query: q.Query, TopK: q.TopK}
	if len(q.ArtifactIDs) > 0 {
		ids := make(map[string]struct{}, len(q.ArtifactIDs))
		for _, id := range q.ArtifactIDs {
			ids[id] = struct{}{}
		}
		out.ArtifactIDs = ids
	}
	return out
}

// Hit is the wire shape of a single search result.
type Hit struct {
	ID      string         `json:"id"`
	Content string         `json:"content"`
	Score   float32        `json:"score"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// OverviewResponse is returned by the overview query endpoints.
type OverviewResponse struct {
	Query       string   `json:"query"`
	TopK        int      `json:"topK"`
	ArtifactIDs []string `json:"artifactIds,omitempty"`
	Overviews   []Hit    `json:"overviews"`
}

// FromOverview converts a domain.OverviewResponse to its wire shape.
func FromOverview(r domain.OverviewResponse) OverviewResponse {
	return OverviewResponse{
		Query:       r.Query,
		TopK:        r.TopK,
		ArtifactIDs: r.ArtifactIDs,
		Overviews:   fromHits(r.Overviews),
	}
}

// ChunkResponse is returned by the chunk query endpoints.
type ChunkResponse struct {
	Query        string   `json:"query"`
	TopK         int      `json:"topK"`
	ArtifactIDs  []string `json:"artifactIds,omitempty"`
	Chunks       []Hit    `json:"chunks"`
	FinalSummary string   `json:"finalSummary,omitempty"`
}

// FromChunk converts a domain.ChunkResponse to its wire shape.
func FromChunk(r domain.ChunkResponse) ChunkResponse {
	return ChunkResponse{
		Query:        r.Query,
		TopK:         r.TopK,
		ArtifactIDs:  r.ArtifactIDs,
		Chunks:       fromHits(r.Chunks),
		FinalSummary: r.FinalSummary,
	}
}

func fromHits(hits []domain.Hit) []Hit {
	out := make([]Hit, len(hits))
	for i, h := range hits {
		out[i] = Hit{ID: h.ID, Content: h.Content, Score: h.Score, Meta: h.Meta}
	}
	return out
}

// InvokeRequest is the body of POST /tool/invoke.
type InvokeRequest struct {
	ToolID string       `json:"toolId"`
	Params QueryRequest `json:"params"`
}

func (r *InvokeRequest) UnmarshalJSON(data []byte) error {
	raw, err := decodeRaw(data)
	if err != nil {
		return err
	}
	r.ToolID = stringField(raw, "toolId", "tool_id")
	if paramsRaw, ok := rawField(raw, "params"); ok {
		// A query nested as an object under params.queryRequest (or
		// query_request) is decoded; otherwise params itself is the query.
		if params, err := decodeRaw(paramsRaw); err == nil {
			if nested, ok := rawField(params, "queryRequest", "query_request"); ok && len(nested) > 0 && nested[0] == '{' {
				paramsRaw = nested
			}
		}
		if err := json.Unmarshal(paramsRaw, &r.Params); err != nil {
			return fmt.Errorf("decode params: %w", err)
		}
	}
	return nil
}
