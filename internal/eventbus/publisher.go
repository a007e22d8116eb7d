// Package eventbus publishes a startup announcement of this service's tool
// descriptors to Kafka, so other services can discover what tools are
// available without a separate registry (§4.14).
package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	kafka "github.com/segmentio/kafka-go"
)

// Writer is the subset of *kafka.Writer the Publisher needs, so tests can
// substitute a fake.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ToolDescriptor describes one tool this service exposes, per §4.9.
type ToolDescriptor struct {
	ToolID      string `json:"toolId"`
	Description string `json:"description"`
}

// ServiceAnnouncement is the message published on startup.
type ServiceAnnouncement struct {
	ServiceName string           `json:"serviceName"`
	Tools       []ToolDescriptor `json:"tools"`
}

// Publisher publishes the startup announcement to a configured topic.
type Publisher struct {
	writer      Writer
	topic       string
	serviceName string
	logger      *slog.Logger
}

// New builds a Publisher. writer is expected to already be bound to topic
// (kafka-go.Writer's Topic field), but topic is also carried here for the
// message key and for logging.
func New(writer Writer, topic, serviceName string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{writer: writer, topic: topic, serviceName: serviceName, logger: logger}
}

// PublishToolsAnnouncement publishes one message listing this service's
// built-in tools (§4.9), keyed by the service name. A publish failure is
// logged and does not propagate, matching §4.14's "does not block startup."
func (p *Publisher) PublishToolsAnnouncement(ctx context.Context, tools []ToolDescriptor) {
	announcement := ServiceAnnouncement{ServiceName: p.serviceName, Tools: tools}

	value, err := json.Marshal(announcement)
	if err != nil {
		p.logger.Error("failed to marshal tool announcement", "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(p.serviceName),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish tool announcement", "topic", p.topic, "error", err)
		return
	}
	p.logger.Info("published tool announcement", "topic", p.topic, "tools", len(tools))
}
