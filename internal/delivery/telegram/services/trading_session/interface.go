// internal/delivery/telegram/services/trading_session/interface.go
package trading_session

import (
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
)

// Service управляет жизненным циклом персистентных торговых сессий
type Service interface {
	// Create создает новую сессию в статусе created
	Create(params CreateParams) (*models.TradingSession, error)
	// Get возвращает сессию по идентификатору, nil если не найдена
	Get(id int) (*models.TradingSession, error)
	// Activate переводит сессию в статус active
	Activate(id int) error
	// Complete переводит сессию в статус completed
	Complete(id int) error
	// TargetGroups возвращает активные группы, подходящие под теги сессии
	TargetGroups(session *models.TradingSession) ([]*models.Group, error)
	// StartSweeper запускает фоновую пометку истекших сессий
	StartSweeper()
	// StopSweeper останавливает фоновую пометку
	StopSweeper()
}

// CreateParams параметры создания торговой сессии
type CreateParams struct {
	Direction     models.TradeDirection
	CurrencyFrom  string
	CurrencyTo    string
	Volume        string
	TargetRate    *float64
	PaymentMethod *models.PaymentMethod
	TTLMinutes    int
	TargetTags    []string
}
