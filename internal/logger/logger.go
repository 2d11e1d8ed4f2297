// Package logger builds the zap logger shared by the server and CLI commands.
package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New returns a production (JSON) logger for mode "prod"/"production" and a
// human-readable development logger otherwise.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

// Must is New that panics on error. Only used from main.
func Must(mode string) *zap.Logger {
	l, err := New(mode)
	if err != nil {
		panic(err)
	}
	return l
}
