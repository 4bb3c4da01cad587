package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/buildlab-academy/internal/config"

	"github.com/stretchr/testify/require"
)

func TestNewPublisherDisabledReturnsNop(t *testing.T) {
	require.IsType(t, NopPublisher{}, NewPublisher(config.KafkaConfig{Enabled: false, Brokers: []string{"b:9092"}, Topic: "t"}))
	require.IsType(t, NopPublisher{}, NewPublisher(config.KafkaConfig{Enabled: true, Brokers: []string{" "}, Topic: "t"}))
	require.IsType(t, &KafkaPublisher{}, NewPublisher(config.KafkaConfig{Enabled: true, Brokers: []string{"b:9092"}, Topic: "t"}))
}

func TestEncodeMessageKeysByUser(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	msg, err := encodeMessage(Event{
		Type:           "student_discount.used",
		VerificationID: 7,
		UserID:         "user-42",
		OccurredAt:     at,
		Data:           map[string]interface{}{"order_id": "o-1"},
	})
	require.NoError(t, err)
	require.Equal(t, "user-42", string(msg.Key))
	require.Equal(t, at, msg.Time)
	require.Equal(t, "event_type", msg.Headers[0].Key)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, uint(7), decoded.VerificationID)
	require.Equal(t, "o-1", decoded.Data["order_id"])
}
