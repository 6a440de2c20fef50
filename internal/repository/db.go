package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB is a database/sql handle plus the dialect its queries are built for.
type DB struct {
	SQL     *sql.DB
	Dialect string
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

// IsPostgres reports whether dsn names a Postgres server rather than a SQLite file.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to Postgres through a pgx pool when the DSN is a postgres URL,
// and opens a SQLite file otherwise.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if IsPostgres(cfg.DSN) {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(ctx, cfg, logger)
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("db.connect", "dialect", dialect.Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("db.connect.error", "error", err)
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "attendance-tracker"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("db.connect.error", "error", err)
		return nil, fmt.Errorf("connect: %w", err)
	}

	logger.Info("db.connect.ok", "dialect", dialect.Postgres)
	return &DB{SQL: stdlib.OpenDBFromPool(pool), Dialect: dialect.Postgres, pool: pool, logger: logger}, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("db.connect", "dialect", dialect.SQLite, "path", cfg.DSN)
	dsn := cfg.DSN
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	// Pragmas in the DSN apply to every connection the pool opens.
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("db.connect.error", "error", err)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	logger.Info("db.connect.ok", "dialect", dialect.SQLite)
	return &DB{SQL: db, Dialect: dialect.SQLite, logger: logger}, nil
}

// Close closes the handle and, for Postgres, the underlying pool.
func (db *DB) Close() {
	db.logger.Info("db.close")
	if err := db.SQL.Close(); err != nil {
		db.logger.Error("db.close.error", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
}

// HealthCheck pings the database.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.SQL.PingContext(ctx); err != nil {
		db.logger.Error("db.ping.error", "error", err)
		return dbError("ping database", err)
	}
	db.logger.Debug("db.ping.ok")
	return nil
}

func (db *DB) builder() *entsql.DialectBuilder {
	return entsql.Dialect(db.Dialect)
}

// schemaDDL is written in the subset of SQL that SQLite and Postgres share,
// so one list serves both dialects. Statements must stay idempotent.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id            VARCHAR(36)  NOT NULL PRIMARY KEY,
	username      VARCHAR(32)  NOT NULL UNIQUE,
	email         VARCHAR(255) NOT NULL,
	full_name     TEXT,
	password_hash TEXT         NOT NULL,
	created_at    TEXT         NOT NULL,
	last_login    TEXT
)`,
	`CREATE TABLE IF NOT EXISTS holidays (
	id         VARCHAR(36) NOT NULL PRIMARY KEY,
	user_id    VARCHAR(36) NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	date       VARCHAR(10) NOT NULL,
	reason     TEXT,
	created_at TEXT        NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS holidays_user_date ON holidays (user_id, date)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
	id         VARCHAR(36) NOT NULL PRIMARY KEY,
	user_id    VARCHAR(36) NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	date       VARCHAR(10) NOT NULL,
	subject    TEXT,
	status     VARCHAR(16) NOT NULL,
	notes      TEXT,
	created_at TEXT        NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS attendance_records_user_date ON attendance_records (user_id, date)`,
}

// Migrate creates the tables and indexes when they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			db.logger.Error("db.migrate.error", "dialect", db.Dialect, "error", err)
			return dbError("migrate", err)
		}
	}
	db.logger.Info("db.migrate.ok", "dialect", db.Dialect, "statements", len(schemaDDL))
	return nil
}

const (
	tableUsers    = "users"
	tableHolidays = "holidays"
	tableRecords  = "attendance_records"
)

func dbError(op string, err error) error {
	return common.NewAppError("DB_ERROR", "failed to "+op, fmt.Errorf("%w: %w", common.ErrDatabase, err))
}

type sqlStateErr interface {
	SQLState() string
}

// isUniqueViolation recognizes unique-constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var pgErr sqlStateErr
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
