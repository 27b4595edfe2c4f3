package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
)

// Sender 是 *mail.Client 中发送邮件所需的部分
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// errMalformed 表示消息本身无法处理，重新入队也不会成功
var errMalformed = errors.New("malformed message")

type Consumer struct {
	sender Sender
	from   string
	to     string
	loc    *time.Location
}

func NewConsumer(sender Sender, from, to string, loc *time.Location) *Consumer {
	return &Consumer{
		sender: sender,
		from:   from,
		to:     to,
		loc:    loc,
	}
}

// Handle 解析一条翻转事件并发送邮件
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev domain.BookingWindowEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Join(errMalformed, err)
	}

	msg, err := BuildMessage(c.from, MailForEvent(ev, c.to, c.loc))
	if err != nil {
		return errors.Join(errMalformed, err)
	}

	return c.sender.DialAndSendWithContext(ctx, msg)
}

// Run 持续消费 deliveries 直到 ctx 结束或通道关闭。
// 格式错误的消息直接丢弃，发送失败的消息重新入队。
func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			slog.Info("收到消息", "type", d.Type, "body", string(d.Body))

			err := c.Handle(ctx, d.Body)
			switch {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, errMalformed):
				slog.Error("无法处理消息", "error", err)
				_ = d.Nack(false, false)
			default:
				slog.Error("邮件发送失败", "error", err)
				_ = d.Nack(false, true)
			}
		}
	}
}
