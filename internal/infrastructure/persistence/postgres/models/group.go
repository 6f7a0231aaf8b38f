// internal/infrastructure/persistence/postgres/models/group.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// GroupStatus статус отслеживаемой группы
type GroupStatus string

const (
	GroupActive   GroupStatus = "active"
	GroupInactive GroupStatus = "inactive"
)

// Group - отслеживаемая Telegram-группа, источник сообщений
type Group struct {
	ID         int            `db:"id"          json:"id"`
	TelegramID int64          `db:"telegram_id" json:"telegram_id"`
	Title      string         `db:"title"       json:"title"`
	Status     GroupStatus    `db:"status"      json:"status"`
	Tags       pq.StringArray `db:"tags"        json:"tags"`
	CreatedAt  time.Time      `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"  json:"updated_at"`
}
