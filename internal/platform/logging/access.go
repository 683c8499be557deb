package logging

import (
	"time"

	"go.uber.org/zap"
)

// AccessLogger is the outermost per-request logger. It runs on every request
// regardless of outcome, so it is kept on zap's sugared logger for its lower
// per-call allocation cost rather than reusing the logrus service logger.
type AccessLogger struct {
	sugar *zap.SugaredLogger
}

func NewAccessLogger() (*AccessLogger, error) {
	zl, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &AccessLogger{sugar: zl.Sugar()}, nil
}

func (a *AccessLogger) LogRequest(traceID, method, path string, status int, duration time.Duration) {
	a.sugar.Infow("http_request",
		"trace_id", traceID,
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
}

func (a *AccessLogger) Sync() {
	_ = a.sugar.Sync()
}
