package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/config"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// IDatabase is what repositories need from the connection pool. Queries are
// written with ? placeholders and passed through Rebind.
type IDatabase interface {
	ExecContext(ctx context.Context, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	Rebind(query string) string
}

type Database struct {
	sqlx   *sqlx.DB
	driver string
}

// New wraps an already opened connection pool.
func New(db *sqlx.DB) *Database {
	return &Database{
		sqlx:   db,
		driver: db.DriverName(),
	}
}

func InitDB(cfg config.DatabaseConfig) (*Database, error) {
	logger.Info("Database:Init:Start", "driver", cfg.Driver)

	dsn := dataSourceName(cfg)
	sqlxDB, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		logger.Error("Database:Init:ConnectError", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB := sqlxDB.DB
	if cfg.Driver == DriverSQLite {
		// A single writer avoids "database is locked" and keeps :memory: shared.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	if err = sqlDB.Ping(); err != nil {
		logger.Error("Database:Init:PingError", "error", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := New(sqlxDB)

	logger.Info("Database:Init:Success",
		"driver", cfg.Driver,
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.DBName,
		"maxOpenConns", cfg.MaxOpenConns,
		"maxIdleConns", cfg.MaxIdleConns,
		"connMaxLifetime", cfg.ConnMaxLifetime,
	)

	if cfg.AutoMigrate {
		if err := db.Migrate(context.Background()); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func dataSourceName(cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) error {
	_, err := d.sqlx.ExecContext(ctx, query, args...)
	return err
}

func (d *Database) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.GetContext(ctx, dest, query, args...)
}

func (d *Database) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.SelectContext(ctx, dest, query, args...)
}

func (d *Database) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return d.sqlx.NamedExecContext(ctx, query, arg)
}

// WithTransaction runs fn inside a transaction, committing when fn returns nil
// and rolling back otherwise.
func (d *Database) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.sqlx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Database:WithTransaction:RollbackError", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (d *Database) Rebind(query string) string {
	return d.sqlx.Rebind(query)
}

func (d *Database) Close() error {
	return d.sqlx.Close()
}
