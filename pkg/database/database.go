package database

import (
	"fmt"

	"invoice-service/internal/model"
	"invoice-service/pkg/config"
	"invoice-service/pkg/logger"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is the global database instance
var DB *gorm.DB

func dialector(dbConfig *config.DBConfig) (gorm.Dialector, error) {
	switch dbConfig.Driver {
	case config.DriverPostgres:
		return postgres.New(postgres.Config{
			DSN:                  dbConfig.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		}), nil
	case config.DriverMySQL:
		return mysql.Open(dbConfig.GetDSN()), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", dbConfig.Driver)
}

// GormConfig is the gorm configuration shared by the service, the CLI and
// tests. Driver errors are translated, so a unique key violation surfaces
// as gorm.ErrDuplicatedKey on every dialect.
func GormConfig(level gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	}
}

// InitDB opens the connection for the configured driver and sets the pool
func InitDB(dbConfig *config.DBConfig) (*gorm.DB, error) {
	log := logger.GetLogger()

	dial, err := dialector(dbConfig)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, GormConfig(dbConfig.LogLevel))
	if err != nil {
		log.Error("Failed to connect to database", zap.String("driver", dbConfig.Driver), zap.Error(err))
		return nil, err
	}

	if dbConfig.Tracing {
		if err := db.Use(otelgorm.NewPlugin()); err != nil {
			return nil, fmt.Errorf("install tracing plugin: %w", err)
		}
	}

	// Get generic database object SQL
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Failed to get database object", zap.Error(err))
		return nil, err
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	log.Info("Database connected successfully",
		zap.String("driver", dbConfig.Driver),
		zap.String("db_host", dbConfig.Host),
		zap.String("db_name", dbConfig.DBName),
		zap.Bool("tracing", dbConfig.Tracing))

	DB = db
	return db, nil
}

// Migrate creates or updates the tables of every model
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}

	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

// SetDB replaces the global instance. Used by tests and the CLI.
func SetDB(db *gorm.DB) {
	DB = db
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
