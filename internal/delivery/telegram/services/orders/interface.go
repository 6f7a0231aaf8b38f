// internal/delivery/telegram/services/orders/interface.go
package orders

import (
	"github.com/shopspring/decimal"

	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
)

// Service управляет заявками участников в стакане торговой сессии
type Service interface {
	// Submit добавляет новую заявку в статусе pending.
	// Заявка привязывается к активной торговой сессии.
	Submit(params SubmitParams) (*models.Order, error)
	// Accept помечает заявку принятой
	Accept(orderID int) error
	// Reject помечает заявку отклоненной
	Reject(orderID int) error
}

// SubmitParams параметры подачи заявки
type SubmitParams struct {
	SessionID int
	GroupID   int
	UserID    int64
	Username  string
	Side      models.TradeDirection
	Price     decimal.Decimal
	Volume    decimal.Decimal
	Currency  string
}
