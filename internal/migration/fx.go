package migration

import (
	"strings"

	"github.com/smallbiznis/bookneo/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.DBAutoMigrate {
			return nil
		}
		// Only postgres carries a golang-migrate driver here; other stores are provisioned externally.
		if !strings.EqualFold(strings.TrimSpace(cfg.DBType), "postgres") {
			log.Warn("skipping migrations for non-postgres store", zap.String("type", cfg.DBType))
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	}),
)
