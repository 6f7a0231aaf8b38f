package users_repo

import "p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"

// UserRepository интерфейс доступа к пользователям
type UserRepository interface {
	// Upsert добавляет пользователя или обновляет имя существующего
	Upsert(user *models.User) (*models.User, error)
	// GetByTelegramID возвращает пользователя по Telegram ID, nil если не найден
	GetByTelegramID(telegramID int64) (*models.User, error)
}
