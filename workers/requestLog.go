package workers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

// zapLogFormatter sends chi request lines to the service log instead of stderr
type zapLogFormatter struct {
	log *zap.Logger
}

type zapLogEntry struct {
	log *zap.Logger
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&zapLogFormatter{log: log})
}

func (f *zapLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &zapLogEntry{log: f.log.With(
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote", r.RemoteAddr),
	)}
}

func (e *zapLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	e.log.Info("HTTP request",
		zap.Int("status", status),
		zap.Int("bytes", bytes),
		zap.Duration("elapsed", elapsed),
	)
}

func (e *zapLogEntry) Panic(v interface{}, stack []byte) {
	e.log.Error("HTTP handler panic", zap.Any("panic", v), zap.ByteString("stack", stack))
}
