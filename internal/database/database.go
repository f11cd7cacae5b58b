package database

import (
	"fmt"
	"strings"

	"github.com/h4ks-com/farmhand/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(databaseURL string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	memory := databaseURL == "" || databaseURL == ":memory:" || databaseURL == "sqlite::memory:"

	if memory {
		db, err = gorm.Open(sqlite.Open(":memory:"), config)
	} else if strings.HasPrefix(databaseURL, "sqlite:") {
		// Strip "sqlite:" prefix for SQLite driver
		dbPath := strings.TrimPrefix(databaseURL, "sqlite:")
		dbPath = dbPath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
		db, err = gorm.Open(sqlite.Open(dbPath), config)
	} else {
		db, err = gorm.Open(postgres.Open(databaseURL), config)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if memory {
		// every new connection to ":memory:" is a fresh empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&models.User{},
		&models.APIToken{},
		&models.Farm{},
		&models.FarmMembership{},
		&models.Plot{},
		&models.Worker{},
		&models.Team{},
		&models.TeamMembership{},
		&models.JobType{},
		&models.RateCard{},
		&models.Rate{},
		&models.Plan{},
		&models.Job{},
		&models.JobLog{},
		&models.JobLogTransition{},
		&models.PayPeriod{},
		&models.Adjustment{},
		&models.PayrollLine{},
	)

	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}
