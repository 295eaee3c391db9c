// Package ingest mirrors room events to Kafka when brokers are configured.
// The journal is strictly best-effort: dispatch never waits on it and a
// publish failure is logged by the caller, not retried.
package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Envelope is the journaled record for one room event.
type Envelope struct {
	Room    string `json:"room"`
	Event   string `json:"event"`
	At      int64  `json:"at"`
	Payload any    `json:"payload"`
}

// Journal publishes room events keyed by room id so per-room ordering is
// preserved within a partition.
type Journal struct {
	writer *kafka.Writer
}

// NewJournal builds a journal writing to the given brokers and topic.
func NewJournal(brokers []string, topic string) *Journal {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &Journal{writer: w}
}

// Publish writes one event envelope with a short timeout.
func (j *Journal) Publish(room, event string, payload any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := json.Marshal(Envelope{Room: room, Event: event, At: time.Now().UnixMilli(), Payload: payload})
	if err != nil {
		return err
	}
	return j.writer.WriteMessages(ctx, kafka.Message{Key: []byte(room), Value: b})
}

// Close flushes and closes the underlying writer.
func (j *Journal) Close() error {
	if j.writer == nil {
		return nil
	}
	return j.writer.Close()
}
