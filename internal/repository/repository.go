package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/config"
	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

func (r *Repository) txContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
}

// storeError 将驱动层的错误归类，连接类错误统一视为 ErrStoreUnavailable
func storeError(err error) error {
	if err == nil {
		return nil
	}

	// 已经是领域错误或者是查询结果为空，原样返回
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidReference) || errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrCapacityExceeded) || errors.Is(err, domain.ErrConflictingUpdate) ||
		errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		case pgErr.Code == "40001", pgErr.Code == "40P01":
			// 序列化失败或死锁，交由调用方决定是否重试
			return fmt.Errorf("%w: %v", domain.ErrConflictingUpdate, err)
		default:
			return err
		}
	}

	// 非 Postgres 返回的错误只可能来自连接、超时或取消
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

// int64Array 将 ID 列表编码为 Postgres 数组字面量，配合 $n::bigint[] 使用
func int64Array(ids []int64) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte('}')
	return b.String()
}
