// internal/infrastructure/persistence/postgres/models/users.go
package models

import "time"

// User - пользователь бота
type User struct {
	ID         int       `db:"id"          json:"id"`
	TelegramID int64     `db:"telegram_id" json:"telegram_id"`
	Username   string    `db:"username"    json:"username"`
	FullName   string    `db:"full_name"   json:"full_name"`
	IsAdmin    bool      `db:"is_admin"    json:"is_admin"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

// DisplayName возвращает отображаемое имя для табло и стакана
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FullName != "" {
		return u.FullName
	}
	return "Unknown"
}
