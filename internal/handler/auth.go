package handler

import (
	"strconv"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const TokenCookieName = "__camp_manager_token"

// AuthClaims 中的 CampID 决定了请求能访问的数据范围
type AuthClaims struct {
	CampID int64  `json:"campID"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken 为教职员签发令牌，API 本身不提供登录接口
func IssueToken(secret string, staff *domain.Staff, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		CampID: staff.CampID,
		Role:   string(staff.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(staff.ID, 10),
		},
	})

	return token.SignedString([]byte(secret))
}
