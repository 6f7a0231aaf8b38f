// internal/infrastructure/persistence/postgres/database/schema.go
package database

import (
	"p2p-offer-radar-bot/pkg/logger"
)

// schemaStatements - минимальная схема, поднимаемая при старте.
// Идемпотентна: выполняется при каждом запуске.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          SERIAL PRIMARY KEY,
		telegram_id BIGINT UNIQUE NOT NULL,
		username    TEXT NOT NULL DEFAULT '',
		full_name   TEXT NOT NULL DEFAULT '',
		is_admin    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id          SERIAL PRIMARY KEY,
		telegram_id BIGINT UNIQUE NOT NULL,
		title       TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'active',
		tags        TEXT[] NOT NULL DEFAULT '{}',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS trading_sessions (
		id             SERIAL PRIMARY KEY,
		direction      TEXT NOT NULL,
		currency_from  TEXT NOT NULL,
		currency_to    TEXT NOT NULL,
		volume         TEXT NOT NULL DEFAULT '',
		target_rate    DOUBLE PRECISION,
		payment_method TEXT,
		ttl_minutes    INTEGER NOT NULL DEFAULT 60,
		status         TEXT NOT NULL DEFAULT 'created',
		target_tags    TEXT[] NOT NULL DEFAULT '{}',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id         SERIAL PRIMARY KEY,
		session_id INTEGER NOT NULL REFERENCES trading_sessions(id),
		group_id   INTEGER REFERENCES groups(id),
		user_id    BIGINT NOT NULL,
		username   TEXT NOT NULL DEFAULT '',
		side       TEXT NOT NULL,
		price      NUMERIC(20, 8) NOT NULL,
		volume     NUMERIC(20, 8) NOT NULL,
		currency   TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_session ON orders(session_id)`,
}

// ensureSchema создаёт недостающие таблицы. Вызывается из Start под мьютексом.
func (ds *DatabaseService) ensureSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := ds.db.Exec(stmt); err != nil {
			return err
		}
	}

	logger.Info("✅ Схема базы данных проверена")
	return nil
}
