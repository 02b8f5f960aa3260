package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/medisafe/internal/reminder"
)

// Publisher sends reminder notifications to RabbitMQ.  It implements
// reminder.Notifier.  The connection is opened lazily and re-dialled after
// the broker drops it; a failed publish is logged and returned so the
// poller can retry the slot on its next pass.
type Publisher struct {
    url string
    log logrus.FieldLogger

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

func NewPublisher(url string, log logrus.FieldLogger) *Publisher {
    return &Publisher{url: url, log: log}
}

// Notify publishes n to the reminder.notifications queue as a persistent
// JSON message.
func (p *Publisher) Notify(ctx context.Context, n reminder.Notification) error {
    body, err := json.Marshal(EventFromNotification(n))
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channelLocked()
    if err != nil {
        p.log.WithError(err).Warn("rabbitmq: connect failed")
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",                // default exchange
        ReminderQueueName, // routing key = queue name
        false,             // mandatory
        false,             // immediate
        pub,
    ); err != nil {
        p.log.WithError(err).Warn("rabbitmq: publish failed")
        p.resetLocked()
        return err
    }
    return nil
}

// channelLocked returns an open channel with the queue declared, dialling
// if needed.
func (p *Publisher) channelLocked() (*amqp.Channel, error) {
    if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.resetLocked()

    conn, err := amqp.Dial(p.url)
    if err != nil {
        return nil, fmt.Errorf("dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("channel open: %w", err)
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(ReminderQueueName, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, fmt.Errorf("queue declare: %w", err)
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *Publisher) resetLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.resetLocked()
    return nil
}
