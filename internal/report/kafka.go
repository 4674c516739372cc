package report

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/kafka"
)

// RankEvent is the message published for every ranked document.
type RankEvent struct {
	JobID string `json:"job_id"`
	Entry
}

// KafkaSink publishes one event per report entry, keyed by document name.
type KafkaSink struct {
	producer *kafka.Producer
}

func NewKafkaSink(producer *kafka.Producer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Write(ctx context.Context, jobID string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.producer.PublishBatch(ctx, Events(jobID, entries))
}

// Events converts entries to broker events.
func Events(jobID string, entries []Entry) []kafka.Event {
	events := make([]kafka.Event, len(entries))
	for i, e := range entries {
		events[i] = kafka.Event{
			Key:   e.Name,
			Value: RankEvent{JobID: jobID, Entry: e},
		}
	}
	return events
}
