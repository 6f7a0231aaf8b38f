package group_repo

import "p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"

// GroupRepository интерфейс доступа к отслеживаемым группам
type GroupRepository interface {
	// Upsert добавляет группу или обновляет название существующей
	Upsert(group *models.Group) (*models.Group, error)
	// GetByID возвращает группу по внутреннему ID, nil если не найдена
	GetByID(id int) (*models.Group, error)
	// GetByTelegramID возвращает группу по Telegram ID, nil если не найдена
	GetByTelegramID(telegramID int64) (*models.Group, error)
	// FindActive возвращает все активные группы
	FindActive() ([]*models.Group, error)
	// FindActiveByTags возвращает активные группы с любым из тегов.
	// Пустой список тегов означает все активные группы.
	FindActiveByTags(tags []string) ([]*models.Group, error)
}
