package tool

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/manak-ai/retrieval/internal/domain"
)

// NewMCPServer builds an MCP server exposing the same four built-in tools as
// the HTTP /api/v1/tool/invoke route, both calling into the same Dispatcher
// so neither surface holds state the other doesn't see (§4.9).
func NewMCPServer(d *Dispatcher, serviceName, version string) *server.MCPServer {
	s := server.NewMCPServer(serviceName, version, server.WithToolCapabilities(false))

	for _, toolID := range d.ToolIDs() {
		addMCPTool(s, d, toolID)
	}
	return s
}

func addMCPTool(s *server.MCPServer, d *Dispatcher, toolID string) {
	t := mcp.NewTool(
		toolID,
		mcp.WithDescription("Hierarchical semantic retrieval tool: "+toolID),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language query text")),
		mcp.WithNumber("topK", mcp.Description("Number of results to return")),
		mcp.WithArray("artifactIds", mcp.Description("Optional artifact ID allowlist to restrict the search to")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(t, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		queryReq := parseQueryRequest(req)
		resp := d.Invoke(ctx, InvokeRequest{ToolID: toolID, QueryRequest: queryReq})

		payload, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError("failed to encode tool response"), nil
		}
		if resp.Error != "" {
			return mcp.NewToolResultError(resp.Error), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	})
}

// parseQueryRequest reads the raw argument map directly rather than relying
// on typed accessor helpers, since MCP clients are free to send numbers as
// JSON numbers or as strings (mirroring mvp-joe-project-cortex's
// CoerceBindArguments rationale for tolerant argument parsing).
func parseQueryRequest(req mcp.CallToolRequest) domain.QueryRequest {
	args, _ := req.GetArguments().(map[string]any)

	var out domain.QueryRequest
	if s, ok := args["query"].(string); ok {
		out.Query = s
	}
	switch v := args["topK"].(type) {
	case float64:
		out.TopK = int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			out.TopK = n
		}
	}

	if raw, ok := args["artifactIds"].([]any); ok && len(raw) > 0 {
		ids := make(map[string]struct{}, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				ids[s] = struct{}{}
			}
		}
		if len(ids) > 0 {
			out.ArtifactIDs = ids
		}
	}

	return out
}
