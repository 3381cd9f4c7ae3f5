package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Publisher sends an event to the named queue.
type Publisher interface {
    Publish(ctx context.Context, queue string, event any) error
}

// NopPublisher drops every event.  It is used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// AMQPPublisher publishes persistent JSON messages to RabbitMQ.  Each call
// dials, declares the durable queue and publishes on the default exchange,
// so a broker outage only affects the events raised while it lasts.
type AMQPPublisher struct {
    URL string
    Log *zap.Logger
}

func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
    return &AMQPPublisher{URL: url, Log: log}
}

// Publish returns broker failures to the caller, which decides how to
// report them.  Successful deliveries are logged at debug level.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event any) error {
    if err := p.publish(ctx, queue, event); err != nil {
        return err
    }
    p.Log.Debug("event published", zap.String("queue", queue))
    return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, event any) error {
    body, err := json.Marshal(event)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        return fmt.Errorf("dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}
