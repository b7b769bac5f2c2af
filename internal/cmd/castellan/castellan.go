// Package castellan parses gateway command flags and composes the service
// entrypoint.
package castellan

import (
	"context"
	"flag"
	"fmt"
	"time"

	server "github.com/louisbranch/castellan/internal/gateway/app"
	entrypoint "github.com/louisbranch/castellan/internal/platform/cmd"
)

// Config holds gateway command configuration.
type Config struct {
	BotToken          string        `env:"CASTELLAN_BOT_TOKEN"`
	APIBaseURL        string        `env:"CASTELLAN_API_BASE_URL"        envDefault:"https://api.telegram.org"`
	GameBotUsername   string        `env:"CASTELLAN_GAME_BOT_USERNAME"   envDefault:"ChatWarsBot"`
	DBPath            string        `env:"CASTELLAN_DB_PATH"             envDefault:"castellan.db"`
	HTTPAddr          string        `env:"CASTELLAN_HTTP_ADDR"           envDefault:":8080"`
	OpsJWTSecret      string        `env:"CASTELLAN_OPS_JWT_SECRET"`
	RateLimitInterval time.Duration `env:"CASTELLAN_RATE_LIMIT_INTERVAL" envDefault:"1s"`
	PollTimeout       time.Duration `env:"CASTELLAN_POLL_TIMEOUT"        envDefault:"50s"`
	JournalRetention  time.Duration `env:"CASTELLAN_JOURNAL_RETENTION"   envDefault:"720h"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.BotToken, "bot-token", cfg.BotToken, "Telegram bot token")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "Telegram Bot API base URL")
	fs.StringVar(&cfg.GameBotUsername, "game-bot-username", cfg.GameBotUsername, "username whose forwards carry game reports")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "operator API listen address")
	fs.StringVar(&cfg.OpsJWTSecret, "ops-jwt-secret", cfg.OpsJWTSecret, "operator API token signing secret")
	fs.DurationVar(&cfg.RateLimitInterval, "rate-limit-interval", cfg.RateLimitInterval, "minimum interval between messages per sender")
	fs.DurationVar(&cfg.PollTimeout, "poll-timeout", cfg.PollTimeout, "Telegram long-poll timeout")
	fs.DurationVar(&cfg.JournalRetention, "journal-retention", cfg.JournalRetention, "processing journal retention horizon")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the gateway app and starts the polling and operator surfaces.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCastellan, func(context.Context) error {
		if err := server.Run(ctx, server.Config{
			BotToken:          cfg.BotToken,
			APIBaseURL:        cfg.APIBaseURL,
			GameBotUsername:   cfg.GameBotUsername,
			DBPath:            cfg.DBPath,
			HTTPAddr:          cfg.HTTPAddr,
			OpsJWTSecret:      cfg.OpsJWTSecret,
			RateLimitInterval: cfg.RateLimitInterval,
			PollTimeout:       cfg.PollTimeout,
			JournalRetention:  cfg.JournalRetention,
		}); err != nil {
			return fmt.Errorf("serve gateway: %w", err)
		}
		return nil
	})
}
