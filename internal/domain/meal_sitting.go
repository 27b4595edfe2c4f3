package domain

import "time"

// DateLayout 是 ServiceDate 使用的格式
const DateLayout = "2006-01-02"

type MealSitting struct {
	ID              int64     `json:"id"`
	CampID          int64     `json:"campID"`
	Name            string    `json:"name"`
	ServiceDate     string    `json:"serviceDate"`
	CutoffEnabled   bool      `json:"cutoffEnabled"`
	CutoffTime      TimeOfDay `json:"cutoffTime"`
	ResetEnabled    bool      `json:"resetEnabled"`
	ResetTime       TimeOfDay `json:"resetTime"`
	IsBookingActive bool      `json:"isBookingActive"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Version         int32     `json:"-"`
}
