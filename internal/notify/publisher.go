// Package notify 把预订窗口的翻转事件投递到 RabbitMQ，并在消费端转换为发给厨房的邮件
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel 是 *amqp.Channel 中发布消息所需的部分
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	ch      Channel
	queue   string
	timeout time.Duration
}

func NewPublisher(ch Channel, queue string, timeout time.Duration) *Publisher {
	return &Publisher{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
	}
}

func (p *Publisher) PublishBookingWindowEvent(ctx context.Context, ev domain.BookingWindowEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.At,
			Type:         string(ev.Type),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish %s for sitting %d: %w", ev.Type, ev.SittingID, err)
	}

	return nil
}
