package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"search-insight-miner/config"

	// libsql for remote Turso databases, modernc for local files.
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type SQLiteSQLXOut struct {
	fx.Out

	DB *sqlx.DB `name:"sqlite"`
}

type NewSQLXSQLiteDBParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *zap.SugaredLogger
}

// NewSQLXSQLiteDB opens the configured SQLite database. DB is nil when neither
// TURSO_SQLITE_DSN nor TURSO_SQLITE_PATH is set.
func NewSQLXSQLiteDB(p NewSQLXSQLiteDBParams) (SQLiteSQLXOut, error) {
	dsn := SQLiteDSN(p.Cfg)
	if dsn == "" {
		p.Logger.Infow("sqlite_disabled", "reason", "missing TURSO_SQLITE_DSN/TURSO_SQLITE_PATH")
		return SQLiteSQLXOut{}, nil
	}

	driver := SQLiteDriver(dsn)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return SQLiteSQLXOut{}, fmt.Errorf("open sqlite db: %w", err)
	}

	if driver == "libsql" {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	} else {
		// Local files serialize writers anyway.
		db.SetMaxOpenConns(1)
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := db.PingContext(pingCtx); err != nil {
				_ = db.Close()
				return fmt.Errorf("ping sqlite db: %w", err)
			}
			p.Logger.Infow("sqlite_enabled", append([]any{"driver", driver}, DSNLogFields(dsn)...)...)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return SQLiteSQLXOut{DB: db}, nil
}

// SQLiteDSN prefers TURSO_SQLITE_DSN over TURSO_SQLITE_PATH and appends the
// auth token for remote databases.
func SQLiteDSN(cfg *config.Config) string {
	dsn := strings.TrimSpace(cfg.Turso.DSN)
	if dsn == "" {
		dsn = strings.TrimSpace(cfg.Turso.Path)
	}
	if dsn == "" {
		return ""
	}
	return ensureAuthTokenQuery(dsn, strings.TrimSpace(cfg.Turso.Token))
}

// SQLiteDriver picks the database/sql driver for a DSN: remote schemes go
// through libsql, everything else is a local modernc database.
func SQLiteDriver(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "sqlite"
	}
	switch strings.ToLower(u.Scheme) {
	case "libsql", "http", "https", "ws", "wss":
		return "libsql"
	default:
		return "sqlite"
	}
}

func DSNLogFields(dsn string) []any {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return []any{"dsn", "local"}
	}
	return []any{"scheme", u.Scheme, "host", u.Host}
}

func ensureAuthTokenQuery(dsn, token string) string {
	if token == "" {
		return dsn
	}

	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}

	if strings.EqualFold(u.Scheme, "file") || strings.EqualFold(u.Scheme, "sqlite") {
		return dsn
	}

	q := u.Query()
	if q.Get("authToken") != "" {
		return dsn
	}

	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String()
}
