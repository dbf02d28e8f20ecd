package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"donation-service/internal/config"
	"github.com/grafana/loki-client-go/loki"
	slogloki "github.com/samber/slog-loki/v3"
)

const serviceName = "donation-service"

func GetLogger(cfg config.Logs) *slog.Logger {
	level := parseLevel(cfg.Level)

	if cfg.URL == "" {
		return localLogger(os.Stdout, level)
	}

	logger, err := remoteLogger(cfg.URL, level)
	if err != nil {
		fallback := localLogger(os.Stdout, level)
		fallback.Error("Error creating loki client, logging locally", "error", err)
		return fallback
	}
	return logger
}

func localLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(ContextHandler{Handler: handler}).With("service", serviceName)
}

func remoteLogger(url string, level slog.Level) (*slog.Logger, error) {
	lokiConfig, err := loki.NewDefaultConfig(url)
	if err != nil {
		return nil, err
	}
	client, err := loki.New(lokiConfig)
	if err != nil {
		return nil, err
	}

	return slog.New(slogloki.Option{
		Level:  level,
		Client: client,
		AttrFromContext: []func(ctx context.Context) []slog.Attr{
			AttrsFromCtx,
		},
	}.NewLokiHandler()).With("service", serviceName), nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
