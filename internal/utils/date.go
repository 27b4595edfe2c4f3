package utils

import (
	"fmt"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidInput, s)
	}
	return t, nil
}
