// Package logging provides the service-level structured logger: a logrus
// wrapper that threads a trace ID (and optionally user/role) through a
// context.Context, plus security/audit helpers for ingress and magic-link
// events.
package logging

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type ctxKey int

const (
	traceIDKey ctxKey = iota
	userIDKey
	roleKey
)

// Logger wraps a *logrus.Logger with the service name baked into every entry.
type Logger struct {
	*logrus.Logger
	service string
}

// New builds a Logger at the given level ("debug"|"info"|"warn"|"error") and
// format ("json"|"text").
func New(service, level, format string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	switch strings.ToLower(format) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return &Logger{Logger: l, service: service}
}

// NewFromEnv reads LOG_LEVEL/LOG_FORMAT (defaulting to info/json).
func NewFromEnv(service string) *Logger {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "json"
	}
	return New(service, level, format)
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

func GetRole(ctx context.Context) string {
	if v, ok := ctx.Value(roleKey).(string); ok {
		return v
	}
	return ""
}

// WithContext returns an entry pre-populated with whatever trace/user/role
// values ctx carries.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{"service": l.service}
	if tid := GetTraceID(ctx); tid != "" {
		fields["trace_id"] = tid
	}
	if uid := GetUserID(ctx); uid != "" {
		fields["user_id"] = uid
	}
	if role := GetRole(ctx); role != "" {
		fields["role"] = role
	}
	return l.WithFields(fields)
}

// LogSecurityEvent records an ingress rejection (rate limit, circuit open,
// IP block, auth failure, magic-link failure) at Warn level with a
// "severity=security" marker so log pipelines can filter on it.
func (l *Logger) LogSecurityEvent(ctx context.Context, eventType string, details map[string]interface{}) {
	entry := l.WithContext(ctx).WithField("severity", "security").WithField("event_type", eventType)
	for k, v := range details {
		entry = entry.WithField(k, v)
	}
	entry.Warn("security event")
}

// LogAudit records a mutating administrative action (engine enable/disable,
// magic-link mint) at Info level.
func (l *Logger) LogAudit(ctx context.Context, action, resource, result string) {
	l.WithContext(ctx).
		WithField("action", action).
		WithField("resource", resource).
		WithField("result", result).
		Info("audit event")
}
