package domain

import "time"

type BookingWindowEventType string

const (
	EventBookingClosed   BookingWindowEventType = "booking_closed"
	EventBookingReopened BookingWindowEventType = "booking_reopened"
)

// BookingWindowEvent 在餐次的预订状态被调度器翻转后发送到消息队列
type BookingWindowEvent struct {
	Type        BookingWindowEventType `json:"type"`
	CampID      int64                  `json:"campID"`
	SittingID   int64                  `json:"sittingID"`
	Name        string                 `json:"name"`
	ServiceDate string                 `json:"serviceDate"`
	At          time.Time              `json:"at"`
}
