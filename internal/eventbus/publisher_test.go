package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafka "github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestPublishToolsAnnouncement_PublishesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := New(w, "tools.announce", "retrieval-service", nil)

	p.PublishToolsAnnouncement(context.Background(), []ToolDescriptor{{ToolID: "documentOverviewQuery"}})

	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "retrieval-service" {
		t.Errorf("expected key to be the service name, got %q", w.msgs[0].Key)
	}

	var decoded ServiceAnnouncement
	if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil {
		t.Fatalf("failed to decode published value: %v", err)
	}
	if len(decoded.Tools) != 1 || decoded.Tools[0].ToolID != "documentOverviewQuery" {
		t.Errorf("unexpected tools payload: %+v", decoded.Tools)
	}
}

func TestPublishToolsAnnouncement_FailureDoesNotPanic(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := New(w, "tools.announce", "retrieval-service", nil)

	p.PublishToolsAnnouncement(context.Background(), []ToolDescriptor{{ToolID: "x"}})
}
