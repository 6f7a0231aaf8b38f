// /internal/infrastructure/persistence/postgres/repository/trading_session/repository.go
package trading_session_repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
	"p2p-offer-radar-bot/pkg/logger"
)

type tradingSessionRepoImpl struct {
	db *sqlx.DB
}

// NewTradingSessionRepository создаёт реализацию TradingSessionRepository
func NewTradingSessionRepository(db *sqlx.DB) TradingSessionRepository {
	return &tradingSessionRepoImpl{db: db}
}

// Create сохраняет новую сессию и возвращает её с присвоенным ID
func (r *tradingSessionRepoImpl) Create(session *models.TradingSession) (*models.TradingSession, error) {
	query := `
		INSERT INTO trading_sessions
			(direction, currency_from, currency_to, volume, target_rate,
			 payment_method, ttl_minutes, status, target_tags, created_at, updated_at)
		VALUES
			(:direction, :currency_from, :currency_to, :volume, :target_rate,
			 :payment_method, :ttl_minutes, :status, :target_tags, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	rows, err := r.db.NamedQuery(query, session)
	if err != nil {
		return nil, fmt.Errorf("TradingSessionRepo.Create: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("TradingSessionRepo.Create: scan: %w", err)
		}
	}

	logger.Info("💾 Торговая сессия #%d сохранена: %s %s/%s, TTL=%d мин",
		session.ID, session.Direction, session.CurrencyFrom, session.CurrencyTo, session.TTLMinutes)
	return session, nil
}

// GetByID возвращает сессию по идентификатору, nil если не найдена
func (r *tradingSessionRepoImpl) GetByID(id int) (*models.TradingSession, error) {
	query := `
		SELECT id, direction, currency_from, currency_to, volume, target_rate,
		       payment_method, ttl_minutes, status, target_tags, created_at, updated_at
		FROM trading_sessions
		WHERE id = $1
	`
	var session models.TradingSession
	if err := r.db.Get(&session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("TradingSessionRepo.GetByID: %w", err)
	}
	return &session, nil
}

// FindActive возвращает все активные сессии
func (r *tradingSessionRepoImpl) FindActive() ([]*models.TradingSession, error) {
	query := `
		SELECT id, direction, currency_from, currency_to, volume, target_rate,
		       payment_method, ttl_minutes, status, target_tags, created_at, updated_at
		FROM trading_sessions
		WHERE status = $1
		ORDER BY created_at DESC
	`
	var sessions []*models.TradingSession
	if err := r.db.Select(&sessions, query, models.SessionActive); err != nil {
		return nil, fmt.Errorf("TradingSessionRepo.FindActive: %w", err)
	}
	return sessions, nil
}

// UpdateStatus переводит сессию в новый статус
func (r *tradingSessionRepoImpl) UpdateStatus(id int, status models.SessionStatus) error {
	query := `
		UPDATE trading_sessions
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(query, status, id)
	if err != nil {
		return fmt.Errorf("TradingSessionRepo.UpdateStatus: %w", err)
	}
	return nil
}

// ExpireOverdue помечает истекшими активные сессии с вышедшим TTL
func (r *tradingSessionRepoImpl) ExpireOverdue() (int64, error) {
	query := `
		UPDATE trading_sessions
		SET status = $1, updated_at = NOW()
		WHERE status = $2
		  AND created_at + ttl_minutes * INTERVAL '1 minute' < NOW()
	`
	res, err := r.db.Exec(query, models.SessionExpired, models.SessionActive)
	if err != nil {
		return 0, fmt.Errorf("TradingSessionRepo.ExpireOverdue: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected > 0 {
		logger.Info("⏰ Истекших торговых сессий помечено: %d", affected)
	}
	return affected, nil
}
