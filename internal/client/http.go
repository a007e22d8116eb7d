package client

import (
	"context"
	"io"
	"net/http"
)

// TokenSource supplies bearer tokens for outbound requests to sibling
// services, satisfied by *auth.IdentityClient.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

func readAll(resp *http.Response) ([]byte, error) {
	return io.ReadAll(resp.Body)
}
