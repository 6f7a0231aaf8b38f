// internal/delivery/telegram/services/order_book/service.go
package order_book

import (
	"fmt"
	"time"

	"p2p-offer-radar-bot/internal/core/domain/orderbook"
	"p2p-offer-radar-bot/internal/delivery/telegram/formatters"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/group"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/order"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/trading_session"
)

// serviceImpl реализация Service поверх репозиториев
type serviceImpl struct {
	sessionRepo trading_session_repo.TradingSessionRepository
	orderRepo   order_repo.OrderRepository
	groupRepo   group_repo.GroupRepository
	formatter   *formatters.OrderBookFormatter
	now         func() time.Time
}

// NewService создает сервис стакана заявок
func NewService(
	sessionRepo trading_session_repo.TradingSessionRepository,
	orderRepo order_repo.OrderRepository,
	groupRepo group_repo.GroupRepository,
) Service {
	return &serviceImpl{
		sessionRepo: sessionRepo,
		orderRepo:   orderRepo,
		groupRepo:   groupRepo,
		formatter:   formatters.NewOrderBookFormatter(),
		now:         time.Now,
	}
}

// Build собирает стакан для торговой сессии
func (s *serviceImpl) Build(sessionID int) (orderbook.Book, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return orderbook.Book{}, fmt.Errorf("OrderBookService.Build: %w", err)
	}
	if session == nil {
		return orderbook.Book{SessionID: sessionID}, nil
	}

	orders, err := s.orderRepo.GetBySession(sessionID)
	if err != nil {
		return orderbook.Book{}, fmt.Errorf("OrderBookService.Build: %w", err)
	}

	groupNames := make(map[int]string)
	for _, order := range orders {
		if _, ok := groupNames[order.GroupID]; ok {
			continue
		}
		group, err := s.groupRepo.GetByID(order.GroupID)
		if err != nil {
			return orderbook.Book{}, fmt.Errorf("OrderBookService.Build: %w", err)
		}
		if group != nil {
			groupNames[order.GroupID] = group.Title
		}
	}

	return orderbook.Build(session, orders, groupNames), nil
}

// FormatText строит стакан и возвращает его текстовый вид
func (s *serviceImpl) FormatText(sessionID int) (string, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return "", fmt.Errorf("OrderBookService.FormatText: %w", err)
	}
	if session == nil {
		return "", fmt.Errorf("OrderBookService.FormatText: сессия #%d не найдена", sessionID)
	}

	book, err := s.Build(sessionID)
	if err != nil {
		return "", err
	}

	return s.formatter.Format(book, session, s.now()), nil
}
