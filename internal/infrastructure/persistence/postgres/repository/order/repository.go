// /internal/infrastructure/persistence/postgres/repository/order/repository.go
package order_repo

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
	"p2p-offer-radar-bot/pkg/logger"
)

type orderRepoImpl struct {
	db *sqlx.DB
}

// NewOrderRepository создаёт реализацию OrderRepository
func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepoImpl{db: db}
}

// Create сохраняет новый ордер и возвращает его с присвоенным ID
func (r *orderRepoImpl) Create(order *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders
			(session_id, group_id, user_id, username, side, price, volume,
			 currency, status, created_at)
		VALUES
			(:session_id, NULLIF(:group_id, 0), :user_id, :username, :side, :price, :volume,
			 :currency, :status, NOW())
		RETURNING id, created_at
	`
	rows, err := r.db.NamedQuery(query, order)
	if err != nil {
		return nil, fmt.Errorf("OrderRepo.Create: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&order.ID, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("OrderRepo.Create: scan: %w", err)
		}
	}

	logger.Info("💾 Ордер #%d сохранён: %s %s по %s (сессия #%d)",
		order.ID, order.Side, order.Volume, order.Price, order.SessionID)
	return order, nil
}

// GetBySession возвращает все ордера торговой сессии
func (r *orderRepoImpl) GetBySession(sessionID int) ([]*models.Order, error) {
	query := `
		SELECT id, session_id, COALESCE(group_id, 0) AS group_id, user_id,
		       username, side, price, volume, currency, status, created_at
		FROM orders
		WHERE session_id = $1
		ORDER BY created_at
	`
	var orders []*models.Order
	if err := r.db.Select(&orders, query, sessionID); err != nil {
		return nil, fmt.Errorf("OrderRepo.GetBySession: %w", err)
	}
	return orders, nil
}

// UpdateStatus переводит ордер в новый статус
func (r *orderRepoImpl) UpdateStatus(id int, status models.OrderStatus) error {
	query := `UPDATE orders SET status = $1 WHERE id = $2`
	_, err := r.db.Exec(query, status, id)
	if err != nil {
		return fmt.Errorf("OrderRepo.UpdateStatus: %w", err)
	}
	return nil
}
