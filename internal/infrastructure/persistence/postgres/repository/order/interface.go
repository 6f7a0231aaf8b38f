package order_repo

import "p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"

// OrderRepository интерфейс доступа к ордерам стакана
type OrderRepository interface {
	// Create сохраняет новый ордер и возвращает его с присвоенным ID
	Create(order *models.Order) (*models.Order, error)
	// GetBySession возвращает все ордера торговой сессии
	GetBySession(sessionID int) ([]*models.Order, error)
	// UpdateStatus переводит ордер в новый статус
	UpdateStatus(id int, status models.OrderStatus) error
}
