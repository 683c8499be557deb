package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// EngineLogger is the narrow, high-volume logger engine adapters use for
// fetch/parse diagnostics (upstream status codes, selector fallback hits,
// CAPTCHA sentinels). It is a separate concern from service-level audit
// logging and intentionally lives on a separate library, the way this
// codebase keeps transaction logging apart from HTTP access logging.
type EngineLogger struct {
	zl zerolog.Logger
}

func NewEngineLogger(engineName string) *EngineLogger {
	zl := zerolog.New(os.Stdout).With().Timestamp().Str("engine", engineName).Logger()
	return &EngineLogger{zl: zl}
}

func (e *EngineLogger) FallbackSelectorUsed(selector string) {
	e.zl.Debug().Str("selector", selector).Msg("fallback selector used")
}

func (e *EngineLogger) CaptchaDetected(sentinel string) {
	e.zl.Warn().Str("sentinel", sentinel).Msg("captcha sentinel detected")
}

func (e *EngineLogger) UpstreamStatus(status int, url string) {
	e.zl.Debug().Int("status", status).Str("url", url).Msg("upstream response")
}

func (e *EngineLogger) ParseError(err error) {
	e.zl.Error().Err(err).Msg("parse error")
}
