// Package notify publishes verified name lifecycle events for downstream
// consumers (certificates, support tooling). Delivery is best-effort: the
// service logs failures and moves on.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"nameaffirm/internal/verifiedname"
)

const (
	KindNameCreated   = "verified_name.created"
	KindStatusChanged = "verified_name.status_changed"
)

// Event is the JSON payload published per lifecycle change.
type Event struct {
	Kind                   string    `json:"kind"`
	RecordID               string    `json:"record_id"`
	UserID                 string    `json:"user_id"`
	VerifiedName           string    `json:"verified_name"`
	ProfileName            string    `json:"profile_name"`
	Status                 string    `json:"status"`
	VerificationAttemptID  *int64    `json:"verification_attempt_id,omitempty"`
	ProctoredExamAttemptID *int64    `json:"proctored_exam_attempt_id,omitempty"`
	Timestamp              time.Time `json:"timestamp"`
}

// Producer is the transport used to publish events. Implemented by
// platform/kafka.Producer.
type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// KafkaPublisher implements service.Notifier over a Kafka topic, keyed by
// user so per-user ordering holds.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

// NewKafkaPublisher constructs a publisher for the given topic.
func NewKafkaPublisher(producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) NameCreated(ctx context.Context, record *verifiedname.VerifiedName) error {
	return p.publish(ctx, KindNameCreated, record)
}

func (p *KafkaPublisher) StatusChanged(ctx context.Context, record *verifiedname.VerifiedName) error {
	return p.publish(ctx, KindStatusChanged, record)
}

func (p *KafkaPublisher) publish(ctx context.Context, kind string, record *verifiedname.VerifiedName) error {
	event := Event{
		Kind:                   kind,
		RecordID:               record.ID.String(),
		UserID:                 record.UserID,
		VerifiedName:           record.VerifiedName,
		ProfileName:            record.ProfileName,
		Status:                 string(record.Status),
		VerificationAttemptID:  record.VerificationAttemptID,
		ProctoredExamAttemptID: record.ProctoredExamAttemptID,
		Timestamp:              time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, p.topic, []byte(record.UserID), payload)
}
