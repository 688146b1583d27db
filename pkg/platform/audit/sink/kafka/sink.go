// Package kafka publishes audit events to a Kafka topic for downstream
// monitoring and alerting consumers. The sink is best-effort: the store is
// the source of truth and a broker outage never fails a run.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "govlink/pkg/platform/audit"
	"govlink/pkg/platform/circuit"
)

const defaultTopic = "govlink.run-events"

// Sink produces audit events to Kafka, keyed by fund so per-fund ordering
// is preserved within a partition.
type Sink struct {
	client  *kgo.Client
	topic   string
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// Option configures the Sink.
type Option func(*Sink)

// WithTopic overrides the destination topic.
func WithTopic(topic string) Option {
	return func(s *Sink) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithLogger sets a logger for breaker transitions and publish failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// New connects a producer to the seed brokers and ensures the topic exists.
func New(ctx context.Context, seeds []string, opts ...Option) (*Sink, error) {
	s := &Sink{
		topic:   defaultTopic,
		breaker: circuit.New("audit-kafka", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
	}
	for _, opt := range opts {
		opt(s)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.DefaultProduceTopic(s.topic),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	s.client = client

	if err := s.ensureTopic(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// ensureTopic creates the topic when it does not exist yet. An
// already-existing topic is fine.
func (s *Sink) ensureTopic(ctx context.Context) error {
	adm := kadm.NewClient(s.client)
	resp, err := adm.CreateTopic(ctx, 3, 1, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", s.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", s.topic, resp.Err)
	}
	return nil
}

// wireEvent is the JSON structure consumers deserialize.
type wireEvent struct {
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	RunID     string `json:"run_id"`
	FundID    string `json:"fund_id"`
	Action    string `json:"action"`
	Stage     string `json:"stage,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Publish produces one event. While the breaker is open, events are dropped
// without attempting the broker.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	if s.breaker.IsOpen() {
		return nil
	}

	payload, err := json.Marshal(wireEvent{
		Category:  string(event.Category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		RunID:     event.RunID.String(),
		FundID:    event.FundID.String(),
		Action:    string(event.Action),
		Stage:     event.Stage,
		Outcome:   event.Outcome,
		Detail:    event.Detail,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.FundID.String()),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logWarn(ctx, "audit kafka circuit opened", "topic", s.topic, "error", err)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logWarn(ctx, "audit kafka circuit closed", "topic", s.topic)
	}
	return nil
}

// Close flushes pending records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}

func (s *Sink) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}
