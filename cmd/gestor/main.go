package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gestortareas/gestor/pkg/config"
	"github.com/gestortareas/gestor/pkg/logger"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Name     string `env:"APP_NAME" envDefault:"gestor"`
	LogLevel string `env:"LOG_LEVEL"`
}

// loggerOptions builds the process logger options. An unparsable LogLevel is
// reported and otherwise ignored.
func loggerOptions(cfg appConfig) ([]logger.Option, error) {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithContextExtractors(requestIDExtractor),
	}
	if cfg.LogLevel == "" {
		return opts, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return opts, err
	}
	return append(opts, logger.WithLevel(lvl)), nil
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	opts, levelErr := loggerOptions(cfg)
	log := logger.New(opts...)
	logger.SetAsDefault(log)
	if levelErr != nil {
		log.Warn("invalid LOG_LEVEL, using the environment default",
			slog.String("log_level", cfg.LogLevel),
			logger.Error(levelErr),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("gestor stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
