// internal/delivery/telegram/services/trading_session/service.go
package trading_session

import (
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"

	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/group"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/trading_session"
	"p2p-offer-radar-bot/pkg/logger"
)

const sweepInterval = 1 * time.Minute

// serviceImpl реализация Service с хранением в БД
type serviceImpl struct {
	sessionRepo trading_session_repo.TradingSessionRepository
	groupRepo   group_repo.GroupRepository

	mu       sync.Mutex
	stopCh   chan struct{}
	sweeping bool
}

// NewService создает сервис торговых сессий
func NewService(
	sessionRepo trading_session_repo.TradingSessionRepository,
	groupRepo group_repo.GroupRepository,
) Service {
	return &serviceImpl{
		sessionRepo: sessionRepo,
		groupRepo:   groupRepo,
	}
}

// Create создает новую сессию в статусе created
func (s *serviceImpl) Create(params CreateParams) (*models.TradingSession, error) {
	if params.Direction != models.DirectionBuy && params.Direction != models.DirectionSell {
		return nil, fmt.Errorf("TradingSessionService.Create: неизвестное направление %q", params.Direction)
	}
	if params.TTLMinutes <= 0 {
		return nil, fmt.Errorf("TradingSessionService.Create: TTL должен быть положительным")
	}

	// Колонка target_tags объявлена NOT NULL, nil дал бы SQL NULL
	tags := pq.StringArray(params.TargetTags)
	if tags == nil {
		tags = pq.StringArray{}
	}

	session := &models.TradingSession{
		Direction:     params.Direction,
		CurrencyFrom:  params.CurrencyFrom,
		CurrencyTo:    params.CurrencyTo,
		Volume:        params.Volume,
		TargetRate:    params.TargetRate,
		PaymentMethod: params.PaymentMethod,
		TTLMinutes:    params.TTLMinutes,
		Status:        models.SessionCreated,
		TargetTags:    tags,
	}

	created, err := s.sessionRepo.Create(session)
	if err != nil {
		return nil, fmt.Errorf("TradingSessionService.Create: %w", err)
	}

	logger.Info("✅ Торговая сессия #%d создана: %s %s/%s, TTL %d мин.",
		created.ID, created.Direction, created.CurrencyFrom, created.CurrencyTo, created.TTLMinutes)
	return created, nil
}

// Get возвращает сессию по идентификатору
func (s *serviceImpl) Get(id int) (*models.TradingSession, error) {
	session, err := s.sessionRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("TradingSessionService.Get: %w", err)
	}
	return session, nil
}

// Activate переводит сессию в статус active
func (s *serviceImpl) Activate(id int) error {
	if err := s.sessionRepo.UpdateStatus(id, models.SessionActive); err != nil {
		return fmt.Errorf("TradingSessionService.Activate: %w", err)
	}
	logger.Info("🚀 Торговая сессия #%d активирована", id)
	return nil
}

// Complete переводит сессию в статус completed
func (s *serviceImpl) Complete(id int) error {
	if err := s.sessionRepo.UpdateStatus(id, models.SessionCompleted); err != nil {
		return fmt.Errorf("TradingSessionService.Complete: %w", err)
	}
	logger.Info("🏁 Торговая сессия #%d завершена", id)
	return nil
}

// TargetGroups возвращает активные группы, подходящие под теги сессии
func (s *serviceImpl) TargetGroups(session *models.TradingSession) ([]*models.Group, error) {
	groups, err := s.groupRepo.FindActiveByTags(session.TargetTags)
	if err != nil {
		return nil, fmt.Errorf("TradingSessionService.TargetGroups: %w", err)
	}
	return groups, nil
}

// StartSweeper запускает фоновую пометку истекших сессий
func (s *serviceImpl) StartSweeper() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sweeping {
		return
	}
	s.sweeping = true
	s.stopCh = make(chan struct{})

	go s.sweepLoop(s.stopCh)
	logger.Info("♻️ Фоновая проверка TTL торговых сессий запущена (интервал %v)", sweepInterval)
}

// StopSweeper останавливает фоновую пометку
func (s *serviceImpl) StopSweeper() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sweeping {
		return
	}
	close(s.stopCh)
	s.sweeping = false
	logger.Info("🛑 Фоновая проверка TTL торговых сессий остановлена")
}

// sweepLoop периодически помечает истекшие сессии
func (s *serviceImpl) sweepLoop(stopCh chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired, err := s.sessionRepo.ExpireOverdue()
			if err != nil {
				logger.Error("❌ Ошибка пометки истекших сессий: %v", err)
				continue
			}
			if expired > 0 {
				logger.Info("⏰ Помечено истекших торговых сессий: %d", expired)
			}
		case <-stopCh:
			return
		}
	}
}
