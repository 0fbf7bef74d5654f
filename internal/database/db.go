package database

import (
	"fmt"

	"pyme-backend/internal/config"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the PostgreSQL connection and stores it in DB.
func Init(cfg *config.Config) error {
	if cfg.UsesDefaultDSN() {
		logger.L().Warn("DATABASE_DSN usa el valor por defecto, definirlo en producción")
	}

	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), gormCfg)
	if err != nil {
		return fmt.Errorf("no se pudo conectar a la base de datos: %w", err)
	}
	DB = db

	logger.L().Info("conexión a la base de datos establecida")
	return nil
}

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Supplier{},
		&models.Client{},
		&models.Product{},
		&models.Stock{},
		&models.Purchase{},
		&models.Sale{},
		&models.Production{},
		&models.Treasury{},
		&models.AuditLog{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("AutoMigrate falló: %w", err)
	}

	// Un producto tiene como máximo un registro de stock
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_stocks_product_unique ON stocks(product_id)").Error; err != nil {
		return fmt.Errorf("índice único de stock: %w", err)
	}

	logger.L().Info("migración completada", zap.Int("tables", len(Models())))
	return nil
}
