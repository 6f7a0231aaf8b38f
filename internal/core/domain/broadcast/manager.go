// internal/core/domain/broadcast/manager.go
package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"p2p-offer-radar-bot/internal/core/domain/offers"
	"p2p-offer-radar-bot/pkg/logger"
)

// Manager владеет единственным активным окном мониторинга.
// Процесс обслуживает не больше одной сессии одновременно: запуск
// новой немедленно прекращает предыдущую. Все мутации сериализуются
// одним мьютексом; Snapshot отдаёт согласованную копию для чтения.
//
// Истечение окна проверяется лениво: дедлайн перепроверяется при
// каждом вызове IsMonitoring, фоновых таймеров нет. Сессия без
// трафика видимо остановится только при следующей проверке - на это
// ничего не опирается, кроме запрета новых добавлений.
type Manager struct {
	mu      sync.Mutex
	current *session

	store SnapshotStore // nil допустим: без сохранения между рестартами

	now func() time.Time
}

// StartParams параметры запуска окна мониторинга
type StartParams struct {
	OwnerID      int64
	Duration     time.Duration
	ChatIDs      []int64
	Mode         Mode
	Direction    offers.Side
	CurrencyFrom string
	CurrencyTo   string
	TargetRate   float64
}

// NewManager создает менеджер окон мониторинга
func NewManager(store SnapshotStore) *Manager {
	m := &Manager{
		store: store,
		now:   time.Now,
	}
	m.restore()
	return m
}

// Start запускает новое окно, атомарно заменяя предыдущее.
// Сообщения старого окна с этого момента отбрасываются.
func (m *Manager) Start(params StartParams) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		logger.Info("🔄 Предыдущее окно мониторинга %s остановлено новым запуском", m.current.id)
	}

	now := m.now()
	chats := make(map[int64]struct{}, len(params.ChatIDs))
	for _, id := range params.ChatIDs {
		chats[id] = struct{}{}
	}

	m.current = &session{
		id:           uuid.NewString(),
		ownerID:      params.OwnerID,
		mode:         params.Mode,
		direction:    params.Direction,
		currencyFrom: params.CurrencyFrom,
		currencyTo:   params.CurrencyTo,
		targetRate:   params.TargetRate,
		startedAt:    now,
		endsAt:       now.Add(params.Duration),
		chats:        chats,
	}

	snapshot := m.snapshotLocked()
	m.persistLocked()

	logger.Info("✅ Окно мониторинга %s запущено: режим=%s, групп=%d, до %s",
		snapshot.ID, snapshot.Mode, len(snapshot.ChatIDs),
		snapshot.EndsAt.Format("15:04:05"))
	return snapshot
}

// IsMonitoring сообщает, слушается ли сейчас группа chatID.
// chatID 0 проверяет только наличие живого окна. Первый вызов после
// дедлайна останавливает сессию (ленивое истечение).
func (m *Manager) IsMonitoring(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return false
	}

	if !m.now().Before(m.current.endsAt) {
		logger.Info("⏰ Окно мониторинга %s истекло", m.current.id)
		m.stopLocked()
		return false
	}

	if chatID != 0 {
		if _, ok := m.current.chats[chatID]; !ok {
			return false
		}
	}

	return true
}

// AppendOffer безусловно дописывает предложение в журнал активной
// сессии. Дедупликации и дополнительной валидации нет - порядок
// определяется поступлением. Для отсутствующей или истёкшей сессии
// это no-op, не ошибка.
func (m *Manager) AppendOffer(offer offers.Offer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || !m.now().Before(m.current.endsAt) {
		return false
	}

	m.current.log = append(m.current.log, offer)
	m.persistLocked()
	return true
}

// RegisterOutput привязывает место доставки табло. Повторный вызов
// перезаписывает привязку.
func (m *Manager) RegisterOutput(chatID, messageID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return
	}

	m.current.output = Output{ChatID: chatID, MessageID: messageID}
	m.persistLocked()
}

// Stop принудительно завершает активное окно
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return
	}

	logger.Info("🛑 Окно мониторинга %s остановлено", m.current.id)
	m.stopLocked()
}

// Snapshot возвращает согласованную копию активной сессии.
// Второе значение false, если активного окна нет.
func (m *Manager) Snapshot() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Snapshot{}, false
	}
	return m.snapshotLocked(), true
}

// stopLocked очищает набор групп и привязку вывода. Вызывать под мьютексом.
func (m *Manager) stopLocked() {
	m.current = nil
	if m.store != nil {
		if err := m.store.Delete(); err != nil {
			logger.Warn("⚠️ Не удалось удалить снапшот сессии: %v", err)
		}
	}
}

// snapshotLocked копирует состояние сессии. Вызывать под мьютексом.
func (m *Manager) snapshotLocked() Snapshot {
	s := m.current

	chatIDs := make([]int64, 0, len(s.chats))
	for id := range s.chats {
		chatIDs = append(chatIDs, id)
	}

	log := make([]offers.Offer, len(s.log))
	copy(log, s.log)

	return Snapshot{
		ID:           s.id,
		OwnerID:      s.ownerID,
		Mode:         s.mode,
		Direction:    s.direction,
		CurrencyFrom: s.currencyFrom,
		CurrencyTo:   s.currencyTo,
		TargetRate:   s.targetRate,
		StartedAt:    s.startedAt,
		EndsAt:       s.endsAt,
		ChatIDs:      chatIDs,
		Output:       s.output,
		Offers:       log,
	}
}

// persistLocked сохраняет снапшот в хранилище. Вызывать под мьютексом.
func (m *Manager) persistLocked() {
	if m.store == nil {
		return
	}
	if err := m.store.Save(m.snapshotLocked()); err != nil {
		logger.Warn("⚠️ Не удалось сохранить снапшот сессии: %v", err)
	}
}

// restore поднимает живую сессию из хранилища при старте процесса
func (m *Manager) restore() {
	if m.store == nil {
		return
	}

	snapshot, err := m.store.Load()
	if err != nil {
		logger.Warn("⚠️ Не удалось загрузить снапшот сессии: %v", err)
		return
	}
	if snapshot == nil {
		return
	}

	if !m.now().Before(snapshot.EndsAt) {
		logger.Info("ℹ️ Сохранённая сессия %s уже истекла, пропуск восстановления", snapshot.ID)
		if err := m.store.Delete(); err != nil {
			logger.Warn("⚠️ Не удалось удалить истёкший снапшот: %v", err)
		}
		return
	}

	chats := make(map[int64]struct{}, len(snapshot.ChatIDs))
	for _, id := range snapshot.ChatIDs {
		chats[id] = struct{}{}
	}

	m.current = &session{
		id:           snapshot.ID,
		ownerID:      snapshot.OwnerID,
		mode:         snapshot.Mode,
		direction:    snapshot.Direction,
		currencyFrom: snapshot.CurrencyFrom,
		currencyTo:   snapshot.CurrencyTo,
		targetRate:   snapshot.TargetRate,
		startedAt:    snapshot.StartedAt,
		endsAt:       snapshot.EndsAt,
		chats:        chats,
		output:       snapshot.Output,
		log:          snapshot.Offers,
	}

	logger.Info("♻️ Восстановлено окно мониторинга %s (до %s, заявок: %d)",
		snapshot.ID, snapshot.EndsAt.Format("15:04:05"), len(snapshot.Offers))
}
