package orm

import (
	"fmt"
	"time"

	"github.com/google/wire"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lifeops/scheduler/internal/infra/persistence/auditrepo"
	"github.com/lifeops/scheduler/internal/infra/persistence/executionrepo"
	"github.com/lifeops/scheduler/internal/infra/persistence/intentrepo"
	"github.com/lifeops/scheduler/internal/infra/persistence/reviewrepo"
	"github.com/lifeops/scheduler/internal/infra/persistence/schedulerepo"
)

var Provider = wire.NewSet(New)

type Config struct {
	Host                  string
	Port                  int
	Database              string
	User                  string
	Password              string
	MaxConnections        int
	MaxIdleConnections    int
	ConnectionMaxLifetime time.Duration
}

type Storage struct {
	db *gorm.DB
}

func New(cfg Config) (*Storage, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// TranslateError maps driver duplicate-key errors onto
		// gorm.ErrDuplicatedKey; executionrepo depends on it.
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConnections)
	sqlDB.SetConnMaxLifetime(cfg.ConnectionMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Migrate creates or updates all tables. Referenced tables migrate first.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&intentrepo.TaskIntentPo{},
		&schedulerepo.SchedulePo{},
		&executionrepo.ExecutionPo{},
		&auditrepo.ScheduleAuditLogPo{},
		&auditrepo.ExecutionAuditLogPo{},
		&auditrepo.PredicateEvaluationAuditLogPo{},
		&reviewrepo.ReviewOutputPo{},
		&reviewrepo.ReviewItemPo{},
	)
}

func (s *Storage) DB() *gorm.DB {
	return s.db
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
