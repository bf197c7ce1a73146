package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type config struct {
	Production      bool          `env:"PRODUCTION" envDefault:"false"`
	Port            string        `env:"PORT" envDefault:"80"`
	PostgresUrl     string        `env:"POSTGRES_URL" envDefault:"postgres://postgres@postgres:5432/reminders"`
	RedisUrl        string        `env:"REDIS_URL" envDefault:"redis:6379"`
	Secret          string        `env:"SECRET" envDefault:""`
	ReminderCron    string        `env:"REMINDER_CRON" envDefault:"*/5 * * * *"`
	SendTimeout     time.Duration `env:"SEND_TIMEOUT" envDefault:"30s"`
	TickLockTTL     time.Duration `env:"TICK_LOCK_TTL" envDefault:"4m"`
	DefaultTimezone string        `env:"DEFAULT_TIMEZONE" envDefault:"UTC"`
	SmtpHost        string        `env:"SMTP_HOST" envDefault:"localhost"`
	SmtpPort        int           `env:"SMTP_PORT" envDefault:"587"`
	SmtpUser        string        `env:"SMTP_USER" envDefault:""`
	SmtpPassword    string        `env:"SMTP_PASSWORD" envDefault:""`
	SmtpFrom        string        `env:"SMTP_FROM" envDefault:"reminders@localhost"`
}

var conf config

func init() {
	if err := env.Parse(&conf); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
}

func Production() bool {
	return conf.Production
}

func Port() string {
	return conf.Port
}

func PostgresURL() string {
	return conf.PostgresUrl
}

func RedisURL() string {
	return conf.RedisUrl
}

func Secret() string {
	return conf.Secret
}

func ReminderCron() string {
	return conf.ReminderCron
}

func SendTimeout() time.Duration {
	return conf.SendTimeout
}

func TickLockTTL() time.Duration {
	return conf.TickLockTTL
}

func DefaultTimezone() string {
	return conf.DefaultTimezone
}

func SmtpHost() string {
	return conf.SmtpHost
}

func SmtpPort() int {
	return conf.SmtpPort
}

func SmtpUser() string {
	return conf.SmtpUser
}

func SmtpPassword() string {
	return conf.SmtpPassword
}

func SmtpFrom() string {
	return conf.SmtpFrom
}
