package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Consumer drains every event queue and appends one line per event to an
// activity log file.  It reconnects with exponential backoff until its
// context is cancelled.
type Consumer struct {
    URL     string
    LogPath string
    Log     *zap.Logger

    mu sync.Mutex // serializes file appends across queues
}

func NewConsumer(url, logPath string, log *zap.Logger) *Consumer {
    if logPath == "" {
        logPath = filepath.Join("logs", "donation.log")
    }
    return &Consumer{URL: url, LogPath: logPath, Log: log}
}

// Run blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.Warn("event consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.Warn("event consumer loop ended; reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warn("event consumer set QoS failed", zap.Error(err))
    }

    type delivery struct {
        queue string
        amqp.Delivery
    }
    merged := make(chan delivery)
    var wg sync.WaitGroup
    for _, q := range Queues {
        if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", q, err)
        }
        msgs, err := ch.Consume(q, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", q, err)
        }
        wg.Add(1)
        go func(q string, msgs <-chan amqp.Delivery) {
            defer wg.Done()
            for d := range msgs {
                select {
                case merged <- delivery{queue: q, Delivery: d}:
                case <-ctx.Done():
                    return
                }
            }
        }(q, msgs)
    }
    go func() { wg.Wait(); close(merged) }()

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-merged:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.Handle(d.queue, d.Body); err != nil {
                c.Log.Error("event consumer handle message failed", zap.String("queue", d.queue), zap.Error(err))
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes body for queue and appends a line to the activity log.
func (c *Consumer) Handle(queue string, body []byte) error {
    line, err := FormatEvent(queue, body)
    if err != nil {
        return err
    }
    c.mu.Lock()
    defer c.mu.Unlock()
    if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatEvent renders a single human-friendly log line for an event.
func FormatEvent(queue string, body []byte) (string, error) {
    switch queue {
    case QueueRequestCreated:
        var ev RequestCreatedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Request created | request_id=%d | hospital_id=%d | blood_type=%s | quantity=%d | urgency=%s\n",
            ev.OccurredAt, ev.RequestID, ev.HospitalID, ev.BloodType, ev.Quantity, ev.Urgency), nil
    case QueueRequestStatusChanged:
        var ev RequestStatusChangedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Request status changed | request_id=%d | hospital_id=%d | %s -> %s\n",
            ev.OccurredAt, ev.RequestID, ev.HospitalID, ev.From, ev.To), nil
    case QueueDonationAccepted:
        var ev DonationAcceptedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Donation accepted | donation_id=%d | donor_id=%d | request_id=%d | blood_type=%s | quantity=%d | scheduled=%s\n",
            ev.OccurredAt, ev.DonationID, ev.DonorID, ev.RequestID, ev.BloodType, ev.Quantity, ev.DonationDate), nil
    case QueueDonationStatusChanged:
        var ev DonationStatusChangedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Donation status changed | donation_id=%d | %s -> %s\n",
            ev.OccurredAt, ev.DonationID, ev.From, ev.To), nil
    }
    return "", fmt.Errorf("unknown queue %q", queue)
}
