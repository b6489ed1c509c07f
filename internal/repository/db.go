package repository

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-food-scanner/pkg/models"
)

// OpenDatabase opens the nutrition store with the configured driver and runs
// auto-migration for the FOOD_NUTRITION table. MySQL is used in production;
// SQLite keeps local development and tests self-contained.
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err := db.AutoMigrate(&models.Food{}); err != nil {
		return nil, fmt.Errorf("failed to migrate nutrition schema: %w", err)
	}
	return db, nil
}
