// internal/infrastructure/persistence/postgres/models/order.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus статус ордера в стакане
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderAccepted OrderStatus = "accepted"
	OrderRejected OrderStatus = "rejected"
	OrderExpired  OrderStatus = "expired"
)

// Order - заявка участника, привязанная к торговой сессии.
// В отличие от живого предложения из чата объем здесь численный,
// поэтому стакан может считать средневзвешенный курс.
type Order struct {
	ID        int             `db:"id"         json:"id"`
	SessionID int             `db:"session_id" json:"session_id"`
	GroupID   int             `db:"group_id"   json:"group_id"` // 0 - без привязки к группе, в БД NULL
	UserID    int64           `db:"user_id"    json:"user_id"`
	Username  string          `db:"username"   json:"username"`
	Side      TradeDirection  `db:"side"       json:"side"`
	Price     decimal.Decimal `db:"price"      json:"price"`
	Volume    decimal.Decimal `db:"volume"     json:"volume"`
	Currency  string          `db:"currency"   json:"currency"`
	Status    OrderStatus     `db:"status"     json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// IsValid проверяет численную корректность ордера: цена и объем
// должны быть строго положительными
func (o *Order) IsValid() bool {
	return o.Price.IsPositive() && o.Volume.IsPositive()
}

// MatchesSession проверяет, отвечает ли ордер запросу сессии:
// валюта совпадает с принимаемой, а сторона встречна направлению
// самой сессии (сессия запрашивает контрагентов).
func (o *Order) MatchesSession(session *TradingSession) bool {
	if session == nil {
		return false
	}
	return o.Currency == session.CurrencyFrom && o.Side == session.Direction.Opposite()
}
