package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/campops-dev/camp-manager/backend/internal/config"
	"github.com/campops-dev/camp-manager/backend/internal/metrics"
	"github.com/campops-dev/camp-manager/backend/internal/notify"
	"github.com/campops-dev/camp-manager/backend/internal/repository"
	"github.com/campops-dev/camp-manager/backend/internal/scheduler"
	amqp "github.com/rabbitmq/amqp091-go"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Error("无法加载营地时区", "timezone", cfg.Scheduler.Timezone, "error", err)
		return
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", "error", err)
		return
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(cfg.RabbitMQ.Queue, true, false, false, false, nil); err != nil {
		logger.Error("无法声明队列", "error", err)
		return
	}

	publisher := notify.NewPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)

	// 未配置监听地址时不收集指标
	var m *metrics.Metrics
	if cfg.Scheduler.MetricsAddr != "" {
		m = metrics.New()
	}

	s := scheduler.New(repo, scheduler.SystemClock{}, location, publisher, m)
	poller := scheduler.NewPoller(s, repo, time.Duration(cfg.Scheduler.PollInterval)*time.Second)

	// 收到 CTRL+C 或 SIGTERM 后结束轮询
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if m != nil {
		ln, err := net.Listen("tcp", cfg.Scheduler.MetricsAddr)
		if err != nil {
			logger.Error("无法监听指标地址", "addr", cfg.Scheduler.MetricsAddr, "error", err)
			return
		}
		go func() {
			if err := m.Serve(ctx, ln); err != nil {
				logger.Error("指标服务异常退出", "error", err)
			}
		}()
		logger.Info("指标服务已启动", "addr", ln.Addr().String())
	}

	logger.Info("预订窗口轮询已启动", "interval", cfg.Scheduler.PollInterval, "timezone", cfg.Scheduler.Timezone)
	poller.Run(ctx)
	logger.Info("预订窗口轮询已停止")
}
