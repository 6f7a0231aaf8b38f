// internal/delivery/telegram/services/orders/service.go
package orders

import (
	"fmt"
	"time"

	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/order"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/trading_session"
	"p2p-offer-radar-bot/pkg/logger"
)

// serviceImpl реализация Service поверх репозиториев
type serviceImpl struct {
	orderRepo   order_repo.OrderRepository
	sessionRepo trading_session_repo.TradingSessionRepository
	now         func() time.Time
}

// NewService создает сервис заявок
func NewService(
	orderRepo order_repo.OrderRepository,
	sessionRepo trading_session_repo.TradingSessionRepository,
) Service {
	return &serviceImpl{
		orderRepo:   orderRepo,
		sessionRepo: sessionRepo,
		now:         time.Now,
	}
}

// Submit добавляет новую заявку в статусе pending
func (s *serviceImpl) Submit(params SubmitParams) (*models.Order, error) {
	session, err := s.sessionRepo.GetByID(params.SessionID)
	if err != nil {
		return nil, fmt.Errorf("OrderService.Submit: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("OrderService.Submit: сессия #%d не найдена", params.SessionID)
	}
	if session.Status != models.SessionActive {
		return nil, fmt.Errorf("OrderService.Submit: сессия #%d не активна (%s)", session.ID, session.Status)
	}
	if session.IsExpired(s.now()) {
		return nil, fmt.Errorf("OrderService.Submit: сессия #%d истекла", session.ID)
	}

	order := &models.Order{
		SessionID: params.SessionID,
		GroupID:   params.GroupID,
		UserID:    params.UserID,
		Username:  params.Username,
		Side:      params.Side,
		Price:     params.Price,
		Volume:    params.Volume,
		Currency:  params.Currency,
		Status:    models.OrderPending,
	}

	if !order.IsValid() {
		return nil, fmt.Errorf("OrderService.Submit: цена и объем должны быть положительными")
	}

	created, err := s.orderRepo.Create(order)
	if err != nil {
		return nil, fmt.Errorf("OrderService.Submit: %w", err)
	}

	logger.Info("💾 Заявка #%d принята в сессию #%d: %s %s @ %s",
		created.ID, created.SessionID, created.Side,
		created.Volume.StringFixed(0), created.Price.StringFixed(2))
	return created, nil
}

// Accept помечает заявку принятой
func (s *serviceImpl) Accept(orderID int) error {
	if err := s.orderRepo.UpdateStatus(orderID, models.OrderAccepted); err != nil {
		return fmt.Errorf("OrderService.Accept: %w", err)
	}
	logger.Info("✅ Заявка #%d принята", orderID)
	return nil
}

// Reject помечает заявку отклоненной
func (s *serviceImpl) Reject(orderID int) error {
	if err := s.orderRepo.UpdateStatus(orderID, models.OrderRejected); err != nil {
		return fmt.Errorf("OrderService.Reject: %w", err)
	}
	logger.Info("🚫 Заявка #%d отклонена", orderID)
	return nil
}
