package trading_session_repo

import "p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"

// TradingSessionRepository интерфейс доступа к данным торговых сессий
type TradingSessionRepository interface {
	// Create сохраняет новую сессию и возвращает её с присвоенным ID
	Create(session *models.TradingSession) (*models.TradingSession, error)
	// GetByID возвращает сессию по идентификатору, nil если не найдена
	GetByID(id int) (*models.TradingSession, error)
	// FindActive возвращает все активные сессии
	FindActive() ([]*models.TradingSession, error)
	// UpdateStatus переводит сессию в новый статус
	UpdateStatus(id int, status models.SessionStatus) error
	// ExpireOverdue помечает истекшими активные сессии с вышедшим TTL
	ExpireOverdue() (int64, error)
}
