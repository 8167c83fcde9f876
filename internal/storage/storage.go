// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Dialect names a supported SQL backend. The value doubles as the
// database/sql driver name.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

var ErrUnknownDialect = errors.New("unknown database dialect")

// ParseDialect maps a configured driver name onto a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDialect, name)
}

// DialectOf reports the dialect behind an open handle or transaction.
func DialectOf(h interface{ DriverName() string }) Dialect {
	return Dialect(h.DriverName())
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, d Dialect, dsn string) (*sqlx.DB, error) {
	if d == MySQL {
		// DATETIME columns scan into time.Time only with parseTime.
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		dsn = cfg.FormatDSN()
	}

	db, err := sqlx.Open(string(d), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", d, err)
	}

	return db, nil
}

// IsUniqueViolation reports whether err is a unique-constraint violation
// raised by either supported driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

// InsertID runs an INSERT written with '?' placeholders inside tx and
// returns the generated primary key.
func InsertID(ctx context.Context, tx *sqlx.Tx, query string, args ...any) (int64, error) {
	if DialectOf(tx) == Postgres {
		var id int64
		err := tx.QueryRowxContext(ctx, tx.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
