package bootstrap

import (
	"fmt"
	"io"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/widescopeindustries/ai-receptionist/internal/models"
	"github.com/widescopeindustries/ai-receptionist/pkg/config"
)

// Options database setup options
type Options struct {
	AutoMigrate bool
	SeedNonProd bool
}

// SetupDatabase opens the configured database, runs migrations, and
// seeds defaults for non-production environments
func SetupDatabase(logWriter io.Writer, opts *Options) (*gorm.DB, error) {
	if opts == nil {
		opts = &Options{}
	}

	driver := config.GlobalConfig.Database.Driver
	if driver == "" {
		driver = "sqlite"
	}
	dsn := config.GlobalConfig.Database.DSN
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.New(
			newStdLogger(logWriter),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(dsn), gormConfig)
	case "mysql":
		db, err = gorm.Open(mysql.Open(dsn), gormConfig)
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database (%s): %w", driver, err)
	}

	if opts.AutoMigrate {
		if err := db.AutoMigrate(
			&models.Lead{},
			&models.CallRecord{},
			&models.ReceptionistProfile{},
		); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	if opts.SeedNonProd && config.GlobalConfig.Server.Mode != "production" {
		seeder := &SeedService{db: db}
		if err := seeder.SeedAll(); err != nil {
			return nil, fmt.Errorf("seeding failed: %w", err)
		}
	}

	return db, nil
}

type stdLogger struct {
	w io.Writer
}

func newStdLogger(w io.Writer) *stdLogger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.w, format+"\n", args...)
}
