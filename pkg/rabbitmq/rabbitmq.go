package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gym/pkg/logger"

	amqp "github.com/streadway/amqp"
)

// DefaultQueue receives every domain event when Config.Queue is empty.
const DefaultQueue = "gym_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     logger.Logger
	mu      sync.Mutex // guards channel publishes
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// Event is the envelope consumers receive.
type Event struct {
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlationId,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

// NewClient connects to RabbitMQ, opens a channel and declares the event queue.
func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("rabbitmq client connected", "queue", queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   queue,
		log:     log,
	}, nil
}

func declareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends payload as a persistent JSON event of type routingKey to the event queue.
func (c *Client) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	msg, err := encodeEvent(routingKey, logger.CorrelationID(ctx), payload, time.Now())
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The default exchange routes by queue name; the event type travels in msg.Type.
	if err := c.channel.Publish("", c.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

func encodeEvent(routingKey, correlationID string, payload interface{}, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal %s payload: %w", routingKey, err)
	}

	envelope, err := json.Marshal(Event{
		Type:          routingKey,
		CorrelationID: correlationID,
		OccurredAt:    now.UTC(),
		Payload:       body,
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal %s event: %w", routingKey, err)
	}

	return amqp.Publishing{
		ContentType:   "application/json",
		Type:          routingKey,
		CorrelationId: correlationID,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     now,
		Body:          envelope,
	}, nil
}

// DecodeEvent parses a delivery published by Publish.
func DecodeEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("failed to decode event: missing type")
	}
	return &event, nil
}

// ConsumeEvents starts a goroutine that passes every event on the queue to
// handler. Events the handler fails on are requeued once, then dropped.
func (c *Client) ConsumeEvents(handler func(event *Event) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for events", "queue", c.queue)

	go func() {
		for msg := range msgs {
			c.handleDelivery(msg, handler)
		}
		c.log.Info("event consumer stopped", "queue", c.queue)
	}()

	return nil
}

func (c *Client) handleDelivery(msg amqp.Delivery, handler func(event *Event) error) {
	event, err := DecodeEvent(msg.Body)
	if err == nil {
		err = handler(event)
	}
	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			c.log.InternalError("failed to ack event", ackErr, "tag", msg.DeliveryTag)
		}
		return
	}

	c.log.InternalError("failed to process event", err, "tag", msg.DeliveryTag, "redelivered", msg.Redelivered)
	if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
		c.log.InternalError("failed to nack event", nackErr, "tag", msg.DeliveryTag)
	}
}

// LogEvents returns a consumer handler that records each event at info level.
func LogEvents(log logger.Logger) func(event *Event) error {
	return func(event *Event) error {
		log.Info("received event", "type", event.Type, "correlation_id", event.CorrelationID, "payload", string(event.Payload))
		return nil
	}
}
