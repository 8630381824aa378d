package database

import (
	"fmt"
	"strings"

	"podsync/internal/models"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

type Options struct {
	// Driver selects the database/sql driver used for postgres: "pgx" (the
	// gorm default) or "pq".
	Driver string
	// LogLevel is the gorm SQL log level.
	LogLevel logger.LogLevel
}

func New(databaseURL string, opts Options) (*Database, error) {
	var db *gorm.DB
	var err error

	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
	}

	sqliteDB := strings.HasPrefix(databaseURL, "sqlite://")
	if sqliteDB {
		// SQLite for development and tests
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), gormCfg)
	} else {
		// PostgreSQL for production
		dialector := postgres.Open(databaseURL)
		if opts.Driver == "pq" {
			dialector = postgres.New(postgres.Config{
				DriverName: "postgres",
				DSN:        databaseURL,
			})
		}
		db, err = gorm.Open(dialector, gormCfg)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if sqliteDB {
		// an in-memory database only lives as long as its single connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.SyncRun{}, &models.SyncProductResult{}); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
