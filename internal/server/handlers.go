package server

import (
	"encoding/json"
	"net/http"

	"github.com/manak-ai/retrieval/internal/apperror"
	"github.com/manak-ai/retrieval/internal/tool"
	"github.com/manak-ai/retrieval/internal/wire"
)

func decodeQuery(w http.ResponseWriter, r *http.Request) (wire.QueryRequest, bool) {
	var req wire.QueryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return req, false
	}
	if req.Query == "" {
		writeError(w, apperror.New(apperror.Validation, "query is required"))
		return req, false
	}
	return req, true
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.Wrap(apperror.Decode, "failed to decode request body", err)
	}
	return nil
}

func documentAddHandler(documents DocumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wire.DocumentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.DocumentID == "" {
			writeError(w, apperror.New(apperror.Validation, "documentId is required"))
			return
		}

		if err := documents.Add(r.Context(), req.DocumentID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wire.DocumentResponse{DocumentID: req.DocumentID, Status: "accepted"})
	}
}

func documentOverviewHandler(documents DocumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeQuery(w, r)
		if !ok {
			return
		}
		resp, err := documents.OverviewQuery(r.Context(), req.ToDomain())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wire.FromOverview(resp))
	}
}

func documentChunkHandler(documents DocumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeQuery(w, r)
		if !ok {
			return
		}
		resp, err := documents.ChunkQuery(r.Context(), req.ToDomain())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wire.FromChunk(resp))
	}
}

func repositoryAddHandler(repositories RepositoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wire.RepositoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.RepositoryID == "" {
			writeError(w, apperror.New(apperror.Validation, "repositoryId is required"))
			return
		}

		if err := repositories.Add(r.Context(), req.RepositoryID, req.Branch); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wire.RepositoryResponse{RepositoryID: req.RepositoryID, Status: "accepted"})
	}
}

func repositoryOverviewHandler(repositories RepositoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeQuery(w, r)
		if !ok {
			return
		}
		resp, err := repositories.OverviewQuery(r.Context(), req.ToDomain())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wire.FromOverview(resp))
	}
}

func repositoryChunkHandler(repositories RepositoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeQuery(w, r)
		if !ok {
			return
		}
		resp, err := repositories.ChunkQuery(r.Context(), req.ToDomain())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wire.FromChunk(resp))
	}
}

func toolInvokeHandler(tools ToolInvoker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wire.InvokeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.ToolID == "" {
			writeError(w, apperror.New(apperror.Validation, "toolId is required"))
			return
		}

		resp := tools.Invoke(r.Context(), tool.InvokeRequest{ToolID: req.ToolID, QueryRequest: req.Params.ToDomain()})
		writeJSON(w, http.StatusOK, resp)
	}
}
