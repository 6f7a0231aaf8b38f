// internal/core/domain/broadcast/session.go
package broadcast

import (
	"time"

	"p2p-offer-radar-bot/internal/core/domain/offers"
)

// Mode режим отображения окна мониторинга
type Mode string

const (
	// ModeDirectional - направленный сбор: ищем встречную сторону
	ModeDirectional Mode = "directional"
	// ModeBroadcast - произвольный запрос: обе стороны ранжируются независимо
	ModeBroadcast Mode = "broadcast"
)

// Output привязка вывода табло: чат и сообщение для редактирования на месте
type Output struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

// session - активное окно мониторинга. Все поля изменяются только
// под мьютексом владеющего Manager.
type session struct {
	id           string
	ownerID      int64
	mode         Mode
	direction    offers.Side
	currencyFrom string
	currencyTo   string
	targetRate   float64

	startedAt time.Time
	endsAt    time.Time // Фиксируется при создании и никогда не продлевается

	chats  map[int64]struct{}
	output Output

	// Журнал предложений, только добавление в порядке поступления
	log []offers.Offer
}

// Snapshot - согласованная копия состояния сессии для рендеринга
// и для сохранения в Redis. Не содержит ссылок на изменяемые данные.
type Snapshot struct {
	ID           string         `json:"id"`
	OwnerID      int64          `json:"owner_id"`
	Mode         Mode           `json:"mode"`
	Direction    offers.Side    `json:"direction"`
	CurrencyFrom string         `json:"currency_from"`
	CurrencyTo   string         `json:"currency_to"`
	TargetRate   float64        `json:"target_rate"`
	StartedAt    time.Time      `json:"started_at"`
	EndsAt       time.Time      `json:"ends_at"`
	ChatIDs      []int64        `json:"chat_ids"`
	Output       Output         `json:"output"`
	Offers       []offers.Offer `json:"offers"`
}

// Remaining возвращает оставшееся время окна (0 для истёкшего)
func (s Snapshot) Remaining(now time.Time) time.Duration {
	if !now.Before(s.EndsAt) {
		return 0
	}
	return s.EndsAt.Sub(now)
}

// SnapshotStore сохраняет состояние активной сессии между перезапусками
// процесса. Ошибки хранилища не фатальны и только логируются.
type SnapshotStore interface {
	Save(snapshot Snapshot) error
	Load() (*Snapshot, error)
	Delete() error
}
