package handler

import (
	"context"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

type ContextKey string

var (
	RoleCtxKey   ContextKey = "role"
	SubCtxKey    ContextKey = "sub"
	CampIDCtxKey ContextKey = "campID"
)

func campIDFrom(ctx context.Context) int64 {
	campID, _ := ctx.Value(CampIDCtxKey).(int64)
	return campID
}

func roleFrom(ctx context.Context) domain.Role {
	role, _ := ctx.Value(RoleCtxKey).(domain.Role)
	return role
}
