package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
		AutoMigrate        bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Secret     string `env:"SECRET,required"`
		Expiration int    `env:"EXPIRATION" envDefault:"24"` // 小时
	} `envPrefix:"JWT_"`
	Seed struct {
		CampName   string `env:"CAMP_NAME" envDefault:"夏令营"`
		Staff      int    `env:"STAFF" envDefault:"12"`
		Guests     int    `env:"GUESTS" envDefault:"40"`
		UserDomain string `env:"USER_DOMAIN" envDefault:"camp.example.com"`
	} `envPrefix:"SEED_"`
	Email struct {
		KitchenAddress string `env:"KITCHEN_ADDRESS"`
		SMTP           struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		Queue          string `env:"QUEUE" envDefault:"booking_window_events"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host     string `env:"HOST" envDefault:"localhost"`
		Port     int    `env:"PORT" envDefault:"6379"`
		Password string `env:"PASSWORD"`
	} `envPrefix:"REDIS_"`
	Scheduler struct {
		Timezone     string `env:"TIMEZONE" envDefault:"Asia/Shanghai"`
		PollInterval int    `env:"POLL_INTERVAL" envDefault:"60"` // 秒
		MetricsAddr  string `env:"METRICS_ADDR"`                  // 为空时轮询进程不暴露指标
	} `envPrefix:"SCHEDULER_"`
	Lock struct {
		Backend     string `env:"BACKEND" envDefault:"redis"`  // redis 或 local
		TTL         int    `env:"TTL" envDefault:"30"`         // 秒
		WaitTimeout int    `env:"WAIT_TIMEOUT" envDefault:"5"` // 秒
	} `envPrefix:"LOCK_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
