package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/manak-ai/retrieval/internal/apperror"
	"github.com/manak-ai/retrieval/internal/domain"
	"github.com/manak-ai/retrieval/internal/tool"
)

type stubDocumentService struct {
	addErr       error
	overviewResp domain.OverviewResponse
	overviewErr  error
	chunkResp    domain.ChunkResponse
	chunkErr     error
	lastAddID    string
}

func (s *stubDocumentService) Add(_ context.Context, documentID string) error {
	s.lastAddID = documentID
	return s.addErr
}

func (s *stubDocumentService) OverviewQuery(context.Context, domain.QueryRequest) (domain.OverviewResponse, error) {
	return s.overviewResp, s.overviewErr
}

func (s *stubDocumentService) ChunkQuery(context.Context, domain.QueryRequest) (domain.ChunkResponse, error) {
	return s.chunkResp, s.chunkErr
}

type stubRepositoryService struct {
	addErr       error
	overviewResp domain.OverviewResponse
	chunkResp    domain.ChunkResponse
}

func (s *stubRepositoryService) Add(context.Context, string, string) error { return s.addErr }
func (s *stubRepositoryService) OverviewQuery(context.Context, domain.QueryRequest) (domain.OverviewResponse, error) {
	return s.overviewResp, nil
}
func (s *stubRepositoryService) ChunkQuery(context.Context, domain.QueryRequest) (domain.ChunkResponse, error) {
	return s.chunkResp, nil
}

type stubToolInvoker struct {
	resp tool.InvokeResponse
}

func (s *stubToolInvoker) Invoke(context.Context, tool.InvokeRequest) tool.InvokeResponse {
	return s.resp
}

func newTestServer(docs DocumentService, repos RepositoryService, tools ToolInvoker) *Server {
	return New(Config{Port: 0}, docs, repos, tools)
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz_DoesNotRequireAuth(t *testing.T) {
	srv := newTestServer(&stubDocumentService{}, &stubRepositoryService{}, &stubToolInvoker{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAPIRoutes_RequireBearerToken(t *testing.T) {
	srv := newTestServer(&stubDocumentService{}, &stubRepositoryService{}, &stubToolInvoker{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/document", bytes.NewBufferString(`{"documentId":"doc1"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
	}
}

func TestDocumentAdd_AcceptsRequest(t *testing.T) {
	docs := &stubDocumentService{}
	srv := newTestServer(docs, &stubRepositoryService{}, &stubToolInvoker{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/document", `{"documentId":"doc1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if docs.lastAddID != "doc1" {
		t.Errorf("expected Add called with doc1, got %q", docs.lastAddID)
	}
}

func TestDocumentAdd_EmptyDocumentIDReturns400(t *testing.T) {
	srv := newTestServer(&stubDocumentService{}, &stubRepositoryService{}, &stubToolInvoker{})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/document", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDocumentAdd_UnsupportedTypeReturns400(t *testing.T) {
	docs := &stubDocumentService{addErr: apperror.New(apperror.Validation, "unsupported document type: .exe")}
	srv := newTestServer(docs, &stubRepositoryService{}, &stubToolInvoker{})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/document", `{"documentId":"doc1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation error, got %d", rec.Code)
	}
}

func TestDocumentOverviewQuery_EmptyQueryReturns400(t *testing.T) {
	srv := newTestServer(&stubDocumentService{}, &stubRepositoryService{}, &stubToolInvoker{})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/document/overview/query", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDocumentChunkQuery_AcceptsSnakeCaseBody(t *testing.T) {
	docs := &stubDocumentService{chunkResp: domain.ChunkResponse{Query: "hi", TopK: 3}}
	srv := newTestServer(docs, &stubRepositoryService{}, &stubToolInvoker{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/document/chunk/query", `{"query":"hi","top_k":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["query"] != "hi" {
		t.Errorf("expected camelCase query echoed back, got %+v", body)
	}
}

func TestRepositoryAdd_AcceptsOptionalBranch(t *testing.T) {
	repos := &stubRepositoryService{}
	srv := newTestServer(&stubDocumentService{}, repos, &stubToolInvoker{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/repository", `{"repositoryId":"repo1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestToolInvoke_EmptyToolIDReturns400(t *testing.T) {
	srv := newTestServer(&stubDocumentService{}, &stubRepositoryService{}, &stubToolInvoker{})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/tool/invoke", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestToolInvoke_DelegatesToDispatcher(t *testing.T) {
	tools := &stubToolInvoker{resp: tool.InvokeResponse{ToolID: "documentOverviewQuery", Result: "ok"}}
	srv := newTestServer(&stubDocumentService{}, &stubRepositoryService{}, tools)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/tool/invoke", `{"toolId":"documentOverviewQuery","params":{"query":"hi"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
