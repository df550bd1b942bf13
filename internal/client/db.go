package client

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront-backend/internal/model"
)

// InitDB opens the datastore and runs migrations. An empty databaseURL falls
// back to a local sqlite file for development and tests.
func InitDB(databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if databaseURL == "" {
		dialector = sqlite.Open("storefront.db")
	} else {
		dialector = mysql.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
