package domain

type Role string

const (
	RoleDirector    Role = "director"
	RoleCoordinator Role = "coordinator"
	RoleCounselor   Role = "counselor"
)

type Camp struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
