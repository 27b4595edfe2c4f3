package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const timeLayout = "2006-01-02 15:04:05"

// MailForEvent 把翻转事件转换为发给 to 的邮件，时间按 loc 显示
func MailForEvent(ev domain.BookingWindowEvent, to string, loc *time.Location) domain.MailMessage {
	return domain.MailMessage{
		Type: string(ev.Type),
		To:   to,
		Data: domain.BookingWindowMailData{
			SittingName: ev.Name,
			ServiceDate: ev.ServiceDate,
			At:          ev.At.In(loc).Format(timeLayout),
		},
	}
}

func subjectAndTemplate(mailType string) (string, string, error) {
	switch domain.BookingWindowEventType(mailType) {
	case domain.EventBookingClosed:
		return "营地食堂 - 预订已截止", "booking_closed.html", nil
	case domain.EventBookingReopened:
		return "营地食堂 - 预订已重新开放", "booking_reopened.html", nil
	default:
		return "", "", fmt.Errorf("unsupported mail type %q", mailType)
	}
}

func renderBody(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildMessage 根据邮件类型选择模板并生成 go-mail 消息
func BuildMessage(from string, m domain.MailMessage) (*mail.Msg, error) {
	subject, tmpl, err := subjectAndTemplate(m.Type)
	if err != nil {
		return nil, err
	}

	body, err := renderBody(tmpl, m.Data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(m.To); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	return msg, nil
}
