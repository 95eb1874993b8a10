package config

import (
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	pgrepo "github.com/yoockh/mentorloop/internal/repositories/postgres"
)

var PostgresDB *gorm.DB

// InitPostgres opens POSTGRES_URI and applies schema migrations. It returns
// false without error when the URI is unset; the session timeline is then
// disabled.
func InitPostgres() (bool, error) {
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		return false, nil
	}
	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{})
	if err != nil {
		return false, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if _, err := pgrepo.Migrate(sqlDB); err != nil {
		_ = sqlDB.Close()
		return false, err
	}

	PostgresDB = db
	return true, nil
}
