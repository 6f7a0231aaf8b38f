// internal/delivery/telegram/services/broadcast_monitor/service.go
package broadcast_monitor

import (
	"context"
	"fmt"
	"time"

	"p2p-offer-radar-bot/internal/core/domain/broadcast"
	"p2p-offer-radar-bot/internal/core/domain/offers"
	"p2p-offer-radar-bot/internal/delivery/telegram/formatters"
	"p2p-offer-radar-bot/pkg/logger"
	"p2p-offer-radar-bot/pkg/utils"
)

// serviceImpl реализация Service поверх Manager активной сессии
type serviceImpl struct {
	manager   *broadcast.Manager
	analyzer  Analyzer
	sender    DashboardSender
	formatter *formatters.DashboardFormatter

	analyzeTimeout time.Duration
	now            func() time.Time
}

// NewService создает драйвер сессии мониторинга
func NewService(
	manager *broadcast.Manager,
	analyzer Analyzer,
	sender DashboardSender,
	formatter *formatters.DashboardFormatter,
	analyzeTimeout time.Duration,
) Service {
	if analyzeTimeout <= 0 {
		analyzeTimeout = 30 * time.Second
	}
	return &serviceImpl{
		manager:        manager,
		analyzer:       analyzer,
		sender:         sender,
		formatter:      formatter,
		analyzeTimeout: analyzeTimeout,
		now:            time.Now,
	}
}

// HandleGroupMessage обрабатывает входящее сообщение из группы
func (s *serviceImpl) HandleGroupMessage(ctx context.Context, msg InboundMessage) {
	if !s.manager.IsMonitoring(msg.ChatID) {
		return
	}

	snap, ok := s.manager.Snapshot()
	if !ok {
		return
	}

	extracted, err := s.extract(ctx, snap, msg.Text)
	if err != nil {
		logger.Warn("⚠️ Извлечение предложения не удалось, сообщение пропущено: %v", err)
		return
	}
	if len(extracted) == 0 {
		// Модель не нашла предложений: спам или нерелевантное сообщение
		return
	}

	appended := false
	for _, item := range extracted {
		offer := offers.Offer{
			Side:       item.ParsedSide(),
			Price:      item.Price,
			Volume:     item.Volume,
			Currency:   item.Currency,
			User:       msg.User,
			Group:      msg.Group,
			ReceivedAt: msg.ReceivedAt,
			Text:       utils.TruncateText(msg.Text, 100),
			RawText:    msg.Text,
		}
		if s.manager.AppendOffer(offer) {
			appended = true
			logger.Offer(string(offer.Side), offer.Group, offer.PriceValue(), offer.VolumeText())
		}
	}

	if appended {
		s.PushDashboard()
	}
}

// extract прогоняет текст через извлечение предложений. При отключенном
// анализаторе сообщение превращается в предложение-заглушку без полей,
// чтобы сессия продолжала работать в деградированном режиме.
func (s *serviceImpl) extract(ctx context.Context, snap broadcast.Snapshot, text string) ([]offers.ExtractedOffer, error) {
	if !s.analyzer.Enabled() {
		return []offers.ExtractedOffer{{}}, nil
	}

	analyzeCtx, cancel := context.WithTimeout(ctx, s.analyzeTimeout)
	defer cancel()

	return s.analyzer.AnalyzeMessage(analyzeCtx, text, contextHint(snap))
}

// PushDashboard рендерит и доставляет табло текущей сессии.
// Ошибки доставки не фатальны: сессия продолжает собирать предложения.
func (s *serviceImpl) PushDashboard() {
	snap, ok := s.manager.Snapshot()
	if !ok {
		return
	}
	if snap.Output.ChatID == 0 {
		return
	}

	text := s.formatter.Format(snap, snap.Remaining(s.now()))

	messageID, err := s.sender.EditOrSend(snap.Output.ChatID, snap.Output.MessageID, text)
	if err != nil {
		logger.Warn("⚠️ Не удалось обновить табло: %v", err)
		return
	}
	if messageID != snap.Output.MessageID {
		s.manager.RegisterOutput(snap.Output.ChatID, messageID)
	}
}

// contextHint строит подсказку для извлечения исходя из намерения сессии
func contextHint(snap broadcast.Snapshot) string {
	if snap.Mode == broadcast.ModeBroadcast {
		return "Извлеки торговые предложения из сообщения. " +
			"Принимай ВСЕ предложения (и покупку, и продажу). " +
			"Игнорируй только явный спам и нерелевантные сообщения."
	}

	if snap.Direction == offers.SideSell {
		return fmt.Sprintf(
			"Мы ищем тех, кто ПОКУПАЕТ %s за %s. "+
				"Нам нужны только предложения на ПОКУПКУ (side='buy'). "+
				"Игнорируй тех, кто тоже хочет продать.",
			snap.CurrencyTo, snap.CurrencyFrom)
	}

	return fmt.Sprintf(
		"Мы ищем тех, кто ПРОДАЕТ %s за %s. "+
			"Нам нужны только предложения на ПРОДАЖУ (side='sell'). "+
			"Игнорируй тех, кто тоже хочет купить.",
		snap.CurrencyTo, snap.CurrencyFrom)
}
