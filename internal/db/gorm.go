package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/config"
)

var Module = fx.Provide(NewGormClient)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Account struct {
		GormForkedModel
		Name     string `gorm:"not null"`
		Email    string `gorm:"uniqueIndex;size:255;not null"`
		Password string `gorm:"not null"`
		Entries  []ListEntry
	}

	ListEntry struct {
		GormForkedModel
		AccountID  uint64   `gorm:"not null;uniqueIndex:uidx_account_movie"`
		MovieID    uint64   `gorm:"not null;uniqueIndex:uidx_account_movie"`
		Title      string   `gorm:"not null"`
		PosterPath *string
		Category   Category `gorm:"type:varchar(16);not null;index"`
	}
)

func NewGormClient(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	newLogger := logger.New(zap.NewStdLog(l.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLogLevel(cfg.LogLevel),
		IgnoreRecordNotFoundError: true,
	})

	db, err := Open(cfg.DBDriver, cfg.DSN(), newLogger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Open connects without migrating.
func Open(driver, dsn string, l logger.Interface) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         l,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Account{}); err != nil {
		return errors.Wrap(err, "migrate account")
	}
	if err := db.AutoMigrate(&ListEntry{}); err != nil {
		return errors.Wrap(err, "migrate list entry")
	}
	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "info", "warn":
		return logger.Warn
	default:
		return logger.Error
	}
}
