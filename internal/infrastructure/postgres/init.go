package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/LavaJover/festival-order-service/internal/config"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/postgres/models"
)

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{&models.OrderModel{}, &models.GameStateModel{}}
}

// InitDB opens the pool. The schema is auto-migrated only when no
// migrations directory is configured; otherwise golang-migrate owns it.
func InitDB(cfg config.OrderDB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.MigrationsPath == "" {
		if err := db.AutoMigrate(Models()...); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return db, nil
}
