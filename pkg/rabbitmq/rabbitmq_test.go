package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"gym/pkg/logger"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEvent(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := encodeEvent("trainee.registered", "req-9", map[string]interface{}{"username": "john.smith"}, now)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "trainee.registered", msg.Type)
	assert.Equal(t, "req-9", msg.CorrelationId)
	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)

	event, err := DecodeEvent(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "trainee.registered", event.Type)
	assert.Equal(t, "req-9", event.CorrelationID)
	assert.True(t, now.Equal(event.OccurredAt))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "john.smith", payload["username"])
}

func TestEncodeEvent_UnsupportedPayload(t *testing.T) {
	_, err := encodeEvent("training.created", "", map[string]interface{}{"bad": make(chan int)}, time.Now())
	assert.Error(t, err)
}

func TestDecodeEvent_Rejects(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"payload":{}}`))
	assert.Error(t, err)
}

func TestLogEvents(t *testing.T) {
	handler := LogEvents(logger.Discard())
	assert.NoError(t, handler(&Event{Type: "trainee.deleted", Payload: json.RawMessage(`{}`)}))
}
