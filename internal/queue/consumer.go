package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer binds a private queue to Exchange and writes one line per
// lifecycle event. It does not reconnect: when the broker goes away Run
// returns and the process exits.
type Consumer struct {
	Log *zap.Logger
	// Out receives Line() of every event when set.
	Out io.Writer
}

// Run consumes until ctx is cancelled or the delivery channel closes.
func (c *Consumer) Run(ctx context.Context, url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareExchange(ch); err != nil {
		return err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "parcel.#", Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("set QoS failed", zap.Error(err))
	}
	msgs, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.Log.Info("eventlog consuming", zap.String("queue", q.Name), zap.String("exchange", Exchange))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				c.Log.Warn("handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and records it.
func (c *Consumer) Handle(body []byte) error {
	var ev ParcelEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	c.Log.Info("parcel event",
		zap.String("type", ev.Type),
		zap.String("parcel_id", ev.ParcelID),
		zap.String("delivery_status", ev.DeliveryStatus),
		zap.String("rider_email", ev.RiderEmail),
		zap.Time("occurred_at", ev.OccurredAt))
	if c.Out != nil {
		if _, err := io.WriteString(c.Out, ev.Line()+"\n"); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
	}
	return nil
}
