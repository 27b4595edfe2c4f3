package domain

import "time"

type Room struct {
	ID     int64  `json:"id"`
	CampID int64  `json:"campID"`
	Name   string `json:"name"`
}

type Bed struct {
	ID        int64     `json:"id"`
	CampID    int64     `json:"campID"`
	RoomID    int64     `json:"roomID"`
	Label     string    `json:"label"`
	Capacity  int32     `json:"capacity"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

type AssignmentStatus string

const (
	AssignmentActive AssignmentStatus = "active"
	AssignmentEnded  AssignmentStatus = "ended"
)

// Assignment 只会从 active 变为 ended，不会被删除
type Assignment struct {
	ID         int64            `json:"id"`
	CampID     int64            `json:"campID"`
	BedID      int64            `json:"bedID"`
	OccupantID int64            `json:"occupantID"`
	Status     AssignmentStatus `json:"status"`
	StartedAt  time.Time        `json:"startedAt"`
	EndedAt    *time.Time       `json:"endedAt"`
}

// BedOccupancy 是仓储层返回的原始数据，Occupancy 由 active 分配实时统计得到
type BedOccupancy struct {
	BedID     int64
	BedLabel  string
	RoomID    int64
	RoomName  string
	Capacity  int32
	Occupancy int32
}

type BedAvailability struct {
	BedID          int64  `json:"bedID"`
	BedLabel       string `json:"bedLabel"`
	RoomID         int64  `json:"roomID"`
	RoomName       string `json:"roomName"`
	Capacity       int32  `json:"capacity"`
	Occupancy      int32  `json:"occupancy"`
	AvailableSpots int32  `json:"availableSpots"`
	IsAvailable    bool   `json:"isAvailable"`
}

// BedFilter 两个条件都为空时表示营地内所有启用的床位
type BedFilter struct {
	RoomID *int64
	BedIDs []int64
}
