// internal/storage/schema.go
package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		category_id BIGINT NULL REFERENCES categories (id) ON DELETE SET NULL,
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		price NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (price >= 0),
		min_stock INTEGER NOT NULL DEFAULT 0 CHECK (min_stock >= 0),
		supplier TEXT,
		date_added TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS items_category_id_idx ON items (category_id)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		salt TEXT NOT NULL,
		role TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_journal (
		id BIGSERIAL PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id BIGINT NOT NULL,
		action TEXT NOT NULL,
		payload TEXT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
}

// The utf8mb4_bin collation keeps category names unique case-sensitively.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) COLLATE utf8mb4_bin NOT NULL UNIQUE,
		description TEXT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		category_id BIGINT NULL,
		quantity INT NOT NULL DEFAULT 0,
		price DECIMAL(12, 2) NOT NULL DEFAULT 0,
		min_stock INT NOT NULL DEFAULT 0,
		supplier VARCHAR(255) NULL,
		date_added DATETIME(6) NOT NULL,
		INDEX items_category_id_idx (category_id),
		CONSTRAINT items_category_fk FOREIGN KEY (category_id)
			REFERENCES categories (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(255) COLLATE utf8mb4_bin NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		salt VARCHAR(255) NOT NULL,
		role VARCHAR(64) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS inventory_journal (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		entity_type VARCHAR(32) NOT NULL,
		entity_id BIGINT NOT NULL,
		action VARCHAR(32) NOT NULL,
		payload TEXT NOT NULL,
		recorded_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables. Existing tables are left as they are.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	var stmts []string
	switch d := DialectOf(db); d {
	case Postgres:
		stmts = postgresSchema
	case MySQL:
		stmts = mysqlSchema
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDialect, d)
	}

	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
