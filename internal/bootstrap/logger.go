package bootstrap

import (
	"go.uber.org/zap"

	"github.com/novaframes/content-admin/config"
	"github.com/novaframes/content-admin/internal/logger"
)

// NewLogger builds the process logger tagged with the app version.
func NewLogger(cfg config.AppConfig) (*zap.Logger, error) {
	l, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("version", cfg.Version)), nil
}
