package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tinylink/internal/model"
	"tinylink/pkg/logging"
)

var (
	// ErrNotFound is returned when no link has the requested code.
	ErrNotFound = errors.New("link not found")
	// ErrConflict is returned when creating a link whose code already exists.
	ErrConflict = errors.New("link code already exists")
)

// DBOptions selects and tunes the SQL backend.
type DBOptions struct {
	Driver       string // mysql, postgres, sqlite
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	Logger       *zap.Logger
	LogLevel     zapcore.Level
	// Now overrides gorm's clock; used for created_at.
	Now func() time.Time
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

// OpenDB connects, sizes the pool and migrates the schema.
func OpenDB(opts DBOptions) (*gorm.DB, error) {
	d, err := dialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	l := opts.Logger
	if l == nil {
		l = logging.Logger
	}

	cfg := &gorm.Config{
		Logger:         logging.NewGormLogger(l, logging.ToGormLogLevel(opts.LogLevel)),
		TranslateError: true,
	}
	if opts.Now != nil {
		cfg.NowFunc = opts.Now
	}

	db, err := gorm.Open(d, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.Driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY under concurrent redirects
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
	}

	if err := db.AutoMigrate(&model.Link{}, &model.DailyStat{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	l.Info("database ready", zap.String("driver", opts.Driver))
	return db, nil
}

// CloseDB releases the underlying connection pool.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
