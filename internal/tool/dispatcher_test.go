package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/manak-ai/retrieval/internal/domain"
)

func TestInvoke_UnknownToolReturnsErrorNotGoError(t *testing.T) {
	d := New(nil)
	resp := d.Invoke(context.Background(), InvokeRequest{ToolID: "nope"})
	if resp.Error == "" {
		t.Fatal("expected an error message for an unknown tool")
	}
	if resp.Result != nil {
		t.Errorf("expected nil result, got %v", resp.Result)
	}
}

func TestInvoke_EmptyToolIDIsRejected(t *testing.T) {
	d := New(nil)
	resp := d.Invoke(context.Background(), InvokeRequest{})
	if resp.Error == "" {
		t.Fatal("expected an error for an empty tool id")
	}
}

func TestInvoke_HandlerErrorBecomesResponseError(t *testing.T) {
	d := New(nil)
	d.Register("boom", func(context.Context, domain.QueryRequest) (any, error) {
		return nil, errors.New("downstream failed")
	})

	resp := d.Invoke(context.Background(), InvokeRequest{ToolID: "boom"})
	if resp.Error != "downstream failed" {
		t.Errorf("expected downstream error message, got %q", resp.Error)
	}
}

func TestInvoke_HandlerPanicIsRecovered(t *testing.T) {
	d := New(nil)
	d.Register("panics", func(context.Context, domain.QueryRequest) (any, error) {
		panic("boom")
	})

	resp := d.Invoke(context.Background(), InvokeRequest{ToolID: "panics"})
	if resp.Error == "" {
		t.Fatal("expected a recovered-panic error message")
	}
}

func TestInvoke_SuccessReturnsResult(t *testing.T) {
	d := New(nil)
	d.Register("echo", func(_ context.Context, req domain.QueryRequest) (any, error) {
		return req.Query, nil
	})

	resp := d.Invoke(context.Background(), InvokeRequest{ToolID: "echo", QueryRequest: domain.QueryRequest{Query: "hi"}})
	if resp.Error != "" {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if resp.Result != "hi" {
		t.Errorf("expected result %q, got %v", "hi", resp.Result)
	}
}
