package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"imagegallery/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect captures the SQL differences between the supported engines.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Open connects to the relational metadata store, pings it and applies
// pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, Dialect, error) {
	var (
		driverName string
		dsn        string
		dialect    Dialect
		err        error
	)

	switch cfg.Driver {
	case "postgres":
		driverName, dialect = "pgx", Postgres
		dsn, err = postgresDSN(cfg.URL, cfg.Username, cfg.Password)
		if err != nil {
			return nil, dialect, err
		}
	case "sqlite":
		driverName, dialect, dsn = "sqlite", SQLite, cfg.URL
	default:
		return nil, Postgres, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, dialect, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == SQLite {
		// a single writer avoids SQLITE_BUSY under concurrent requests
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, dialect, fmt.Errorf("ping %s: %w", dialect, err)
	}

	if err := Migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, dialect, err
	}
	return db, dialect, nil
}

// postgresDSN merges separately supplied credentials into a URL style DSN.
func postgresDSN(raw, username, password string) (string, error) {
	if username == "" && password == "" {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "", fmt.Errorf("DATABASE_URL must be a postgres:// URL when DB_USERNAME or DB_PASSWORD is set")
	}
	user := username
	if user == "" && u.User != nil {
		user = u.User.Username()
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	return u.String(), nil
}
