// internal/delivery/telegram/services/broadcast_monitor/interface.go
package broadcast_monitor

import (
	"context"
	"time"

	"p2p-offer-radar-bot/internal/core/domain/offers"
)

// Service драйвер активной сессии мониторинга: принимает сообщения
// из отслеживаемых групп, прогоняет их через извлечение и обновляет табло
type Service interface {
	// HandleGroupMessage обрабатывает входящее сообщение из группы.
	// Сообщения из неотслеживаемых чатов игнорируются.
	HandleGroupMessage(ctx context.Context, msg InboundMessage)
	// PushDashboard рендерит табло текущей сессии и доставляет его
	// в закреплённое сообщение администратора
	PushDashboard()
}

// InboundMessage - входящее сообщение из отслеживаемой группы
type InboundMessage struct {
	ChatID     int64
	User       string
	Group      string
	Text       string
	ReceivedAt time.Time
}

// Analyzer извлекает структурированные предложения из текста сообщения
type Analyzer interface {
	Enabled() bool
	AnalyzeMessage(ctx context.Context, text, contextHint string) ([]offers.ExtractedOffer, error)
}

// DashboardSender доставляет табло: редактирует на месте или шлет новое
type DashboardSender interface {
	EditOrSend(chatID, messageID int64, text string) (int64, error)
}
