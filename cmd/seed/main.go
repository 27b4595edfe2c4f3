package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/campops-dev/camp-manager/backend/internal/config"
	"github.com/campops-dev/camp-manager/backend/internal/handler"
	"github.com/campops-dev/camp-manager/backend/internal/repository"
	"github.com/campops-dev/camp-manager/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Error("无法加载营地时区", "timezone", cfg.Scheduler.Timezone, "error", err)
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	if err := repository.RunMigrations(dbpool); err != nil {
		logger.Error("数据库迁移失败", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	summary, err := seed.Run(context.Background(), repo, seed.Options{
		CampName:   cfg.Seed.CampName,
		Staff:      cfg.Seed.Staff,
		Guests:     cfg.Seed.Guests,
		UserDomain: cfg.Seed.UserDomain,
		Today:      time.Now().In(location),
	})
	if err != nil {
		logger.Error("生成演示数据失败", "error", err)
		return
	}

	logger.Info("生成演示数据成功",
		slog.Int64("camp", summary.Camp.ID),
		slog.Int("beds", summary.Beds),
		slog.Int("guests", summary.Guests),
		slog.Int("staff", len(summary.Staff)),
		slog.Int("lessons", summary.Lessons),
		slog.Int("sittings", summary.Sittings),
	)

	if summary.Director != nil {
		token, err := handler.IssueToken(cfg.JWT.Secret, summary.Director, time.Duration(cfg.JWT.Expiration)*time.Hour)
		if err != nil {
			logger.Error("无法签发令牌", "error", err)
			return
		}
		logger.Info("营地主任令牌", "username", summary.Director.Username, "token", token)
	}
}
