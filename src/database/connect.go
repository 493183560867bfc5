package database

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"submarine/src/model"
)

// MainDB is the read/write connection used by the repositories.
var MainDB *gorm.DB

// InitMainDB opens the configured database and runs migrations. Call once at
// startup before any repository is constructed.
func InitMainDB() error {
	config := GetConfig()

	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
	}

	var (
		db  *gorm.DB
		err error
	)
	if strings.HasPrefix(config.DatabaseURL, "postgres://") || strings.HasPrefix(config.DatabaseURL, "postgresql://") {
		db, err = gorm.Open(postgres.Open(config.DatabaseURL), gormConfig)
	} else {
		db, err = gorm.Open(sqlite.Open(config.DatabaseURL), gormConfig)
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Failed to get DB from GORM")
		return err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	if err := db.AutoMigrate(
		&model.EngineSnapshot{},
		&model.Trade{},
	); err != nil {
		logrus.WithError(err).Error("Failed to migrate database")
		return err
	}

	MainDB = db
	logrus.Info("Database connection initialized")
	return nil
}
