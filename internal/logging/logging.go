// Package logging builds the zap logger and exposes it through logr, the
// interface the reconcilers log with.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BuildLogger constructs the root logger. env "prod" selects the JSON
// encoder; anything else uses the development config.
func BuildLogger(level, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	if err := cfg.Level.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	// Lambda forwards stdout and stderr to CloudWatch alike
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// NewLogr wraps a zap logger for code that logs through logr
func NewLogr(logger *zap.Logger) logr.Logger {
	return zapr.NewLogger(logger)
}

// Bootstrap returns a logger usable before configuration is loaded
func Bootstrap() *zap.Logger {
	logger, err := BuildLogger("info", "dev")
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
