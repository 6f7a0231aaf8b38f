// internal/infrastructure/persistence/postgres/models/trading_session.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// TradeDirection направление торговой сессии
type TradeDirection string

const (
	DirectionBuy  TradeDirection = "buy"
	DirectionSell TradeDirection = "sell"
)

// Opposite возвращает встречное направление
func (d TradeDirection) Opposite() TradeDirection {
	if d == DirectionBuy {
		return DirectionSell
	}
	return DirectionBuy
}

// PaymentMethod способ расчёта
type PaymentMethod string

const (
	PaymentNonres   PaymentMethod = "nonres"
	PaymentCash     PaymentMethod = "cash"
	PaymentCashless PaymentMethod = "cashless"
)

// SessionStatus статус торговой сессии
type SessionStatus string

const (
	SessionCreated   SessionStatus = "created"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionExpired   SessionStatus = "expired"
)

// TradingSession хранит именованную торговую сессию, под которую
// собираются ордера стакана
type TradingSession struct {
	ID            int            `db:"id"             json:"id"`
	Direction     TradeDirection `db:"direction"      json:"direction"`
	CurrencyFrom  string         `db:"currency_from"  json:"currency_from"`
	CurrencyTo    string         `db:"currency_to"    json:"currency_to"`
	Volume        string         `db:"volume"         json:"volume"`
	TargetRate    *float64       `db:"target_rate"    json:"target_rate,omitempty"`
	PaymentMethod *PaymentMethod `db:"payment_method" json:"payment_method,omitempty"`
	TTLMinutes    int            `db:"ttl_minutes"    json:"ttl_minutes"`
	Status        SessionStatus  `db:"status"         json:"status"`
	TargetTags    pq.StringArray `db:"target_tags"    json:"target_tags"`
	CreatedAt     time.Time      `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"     json:"updated_at"`
}

// IsExpired проверяет, истёк ли срок жизни сессии.
// Срок считается от момента создания: now - created_at > ttl.
func (s *TradingSession) IsExpired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > time.Duration(s.TTLMinutes)*time.Minute
}

// RemainingTime возвращает оставшееся время жизни (0 для истёкшей)
func (s *TradingSession) RemainingTime(now time.Time) time.Duration {
	remaining := time.Duration(s.TTLMinutes)*time.Minute - now.Sub(s.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TargetRateValue возвращает целевой курс или 0, если он не задан
func (s *TradingSession) TargetRateValue() float64 {
	if s.TargetRate == nil {
		return 0
	}
	return *s.TargetRate
}
