package app

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/loomdi/loom/config"
	"github.com/loomdi/loom/container"
)

// CoreProvider registers the services every application needs:
// the loaded configuration and the zap logger.
type CoreProvider struct {
	container.BaseProvider

	EnvFiles []string
}

func (p *CoreProvider) Register() []container.Registration {
	return []container.Registration{
		container.Singleton("config", func(...any) (any, error) {
			return config.Load(p.EnvFiles...)
		}),
		container.Singleton("logger", func(deps ...any) (any, error) {
			return newLogger(deps[0].(*config.Config))
		},
			container.WithDependencies("config"),
			container.WithTeardown(func(instance any) error {
				// Sync flushes buffered entries; stderr may reject it.
				_ = instance.(*zap.Logger).Sync()
				return nil
			}),
		),
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Log.Level, err)
	}

	zc := zap.NewProductionConfig()
	if !cfg.IsProduction() {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
