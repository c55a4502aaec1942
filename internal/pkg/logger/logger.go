package logger

import (
	"log/slog"
	"os"
	"strings"
)

// NewDefault 根据配置的级别构建标准输出上的文本 Logger。
//
// 未知级别回落到 info。
func NewDefault(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l})
	return slog.New(handler)
}
