package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1rvyn/web-stories-editor/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// Open opens dsn without retrying. A dsn of the form sqlite:<path> selects
// SQLite, anything else is handed to the postgres driver.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, sqlitePrefix) {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	} else {
		dialector = postgres.Open(dsn)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
}

// Connect opens the database, retrying for up to 30 seconds while it comes up.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < 30; i++ {
		db, err = Open(dsn)
		if err == nil {
			log.Info("Successfully connected to database")
			return db, nil
		}
		log.Warn("Failed to connect to database, retrying in 1 second", zap.Error(err))
		time.Sleep(1 * time.Second)
	}
	return nil, err
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Image{},
		&models.MediaItem{},
		&models.Document{},
		&models.Story{},
		&models.Revision{},
		&models.Settings{},
		&models.PublisherLogo{},
		&models.ListingPage{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}
