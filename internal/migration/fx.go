package migration

import (
	"context"

	"github.com/smallbiznis/stockbook/internal/gst/engine"
	"github.com/smallbiznis/stockbook/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, calc *engine.Calculator, log *zap.Logger) error {
		if err := Migrate(conn); err != nil {
			return err
		}
		if err := seed.EnsureGSTStates(context.Background(), conn, calc.Registry()); err != nil {
			return err
		}
		log.Named("migrations").Info("schema ready", zap.String("dialect", conn.Dialector.Name()))
		return nil
	}),
)
