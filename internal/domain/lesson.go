package domain

import "time"

type Lesson struct {
	ID     int64  `json:"id"`
	CampID int64  `json:"campID"`
	Title  string `json:"title"`
}

type Staff struct {
	ID        int64     `json:"id"`
	CampID    int64     `json:"campID"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type Guest struct {
	ID       int64  `json:"id"`
	CampID   int64  `json:"campID"`
	FullName string `json:"fullName"`
}

// LessonStaffChange 描述一次整体替换前后的差异
type LessonStaffChange struct {
	LessonID int64   `json:"lessonID"`
	Added    []int64 `json:"added"`
	Removed  []int64 `json:"removed"`
	StaffIDs []int64 `json:"staffIDs"`
}
