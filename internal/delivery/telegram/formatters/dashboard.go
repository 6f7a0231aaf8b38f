// internal/delivery/telegram/formatters/dashboard.go
package formatters

import (
	"fmt"
	"strings"
	"time"

	"p2p-offer-radar-bot/internal/core/domain/broadcast"
	"p2p-offer-radar-bot/internal/core/domain/offers"
	"p2p-offer-radar-bot/pkg/utils"
)

// DashboardFormatter форматирует табло активной сессии мониторинга.
// Форматтер чистый: время берется из аргументов, не из часов.
type DashboardFormatter struct {
	includeUnknownSide bool
}

// NewDashboardFormatter создает новый форматтер табло
func NewDashboardFormatter(includeUnknownSide bool) *DashboardFormatter {
	return &DashboardFormatter{includeUnknownSide: includeUnknownSide}
}

// Format строит полный текст табло для снапшота сессии
func (f *DashboardFormatter) Format(snap broadcast.Snapshot, remaining time.Duration) string {
	var sb strings.Builder

	sb.WriteString(f.formatHeader(snap, remaining))
	sb.WriteString("\n\n")

	if len(snap.Offers) == 0 {
		sb.WriteString("⏳ Ожидаю первые сообщения...")
		return sb.String()
	}

	params := offers.RankParams{
		Direction:          snap.Direction,
		TargetRate:         snap.TargetRate,
		IncludeUnknownSide: f.includeUnknownSide,
	}

	if snap.Mode == broadcast.ModeBroadcast {
		sb.WriteString(f.formatBroadcast(offers.RankBroadcast(snap.Offers, params)))
	} else {
		sb.WriteString(f.formatDirectional(offers.RankDirectional(snap.Offers, params)))
	}

	return sb.String()
}

// formatHeader строит заголовок: направление, пара и оставшееся время
func (f *DashboardFormatter) formatHeader(snap broadcast.Snapshot, remaining time.Duration) string {
	var direction string
	switch {
	case snap.Mode == broadcast.ModeBroadcast:
		direction = "ПРОИЗВОЛЬНЫЙ ЗАПРОС"
	case snap.Direction == offers.SideSell:
		direction = "ПРОДАЖА"
	default:
		direction = "ПОКУПКА"
	}

	header := fmt.Sprintf("📊 *Сбор заявок: %s*", direction)
	if snap.CurrencyFrom != "" && snap.CurrencyTo != "" {
		header = fmt.Sprintf("📊 *Сбор заявок: %s %s (за %s)*",
			direction, snap.CurrencyFrom, snap.CurrencyTo)
	}

	minutes := int(remaining.Minutes())
	return header + fmt.Sprintf("\n⏱️ Осталось времени: %d мин.", minutes)
}

// formatDirectional рендерит табло направленного режима
func (f *DashboardFormatter) formatDirectional(result offers.DirectionalResult) string {
	var lines []string

	if len(result.Ranked.Offers) > 0 {
		top := result.Ranked.Offers
		if len(top) > offers.DefaultTopLimit {
			top = top[:offers.DefaultTopLimit]
		}
		lines = append(lines, "*ТОП ПРЕДЛОЖЕНИЙ (Сортировка по выгодности):*")
		lines = append(lines, f.formatRankedLines(top)...)
		lines = append(lines, "", fmt.Sprintf("📈 *Средний курс: %s*",
			utils.FormatPrice(result.Ranked.Average, 2)))
	}

	if len(result.Other) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "📋 *Прочие сообщения:*")
		lines = append(lines, f.formatOtherLines(result.Other)...)
	}

	if len(lines) == 0 {
		return "⏳ Ожидаю первые сообщения..."
	}

	return strings.Join(lines, "\n")
}

// formatBroadcast рендерит табло ненаправленного режима: обе стороны
// ранжируются независимо, плюс спред между средними
func (f *DashboardFormatter) formatBroadcast(result offers.BroadcastResult) string {
	var lines []string

	if len(result.Sell.Offers) > 0 {
		lines = append(lines, "*📤 ПРОДАЮТ (лучшие сверху):*")
		lines = append(lines, f.formatRankedLines(result.Sell.Offers)...)
		lines = append(lines, fmt.Sprintf("📈 *Средний курс продажи: %s*",
			utils.FormatPrice(result.Sell.Average, 2)))
	}

	if len(result.Buy.Offers) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "*📥 ПОКУПАЮТ (лучшие сверху):*")
		lines = append(lines, f.formatRankedLines(result.Buy.Offers)...)
		lines = append(lines, fmt.Sprintf("📈 *Средний курс покупки: %s*",
			utils.FormatPrice(result.Buy.Average, 2)))
	}

	if result.HasSpread {
		lines = append(lines, "", fmt.Sprintf("↔️ *Спред: %s*",
			utils.FormatPrice(result.Spread, 2)))
	}

	if len(result.Other) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "📋 *Прочие сообщения:*")
		lines = append(lines, f.formatOtherLines(result.Other)...)
	}

	if len(lines) == 0 {
		return "⏳ Ожидаю первые сообщения..."
	}

	return strings.Join(lines, "\n")
}

// formatRankedLines нумерует предложения: цена | объем | автор (группа)
func (f *DashboardFormatter) formatRankedLines(list []offers.Offer) []string {
	lines := make([]string, 0, len(list))
	for i, offer := range list {
		volume := ""
		if offer.VolumeText() != "" {
			volume = fmt.Sprintf(" | %s", offer.VolumeText())
		}
		lines = append(lines, fmt.Sprintf("%d. *%g*%s | %s (%s)",
			i+1, offer.PriceValue(), volume, offer.User, offer.Group))
	}
	return lines
}

// formatOtherLines строит хвост нераспознанных сообщений
func (f *DashboardFormatter) formatOtherLines(list []offers.Offer) []string {
	lines := make([]string, 0, len(list))
	for _, offer := range list {
		lines = append(lines, fmt.Sprintf("• %s: %s...",
			offer.User, utils.TruncateText(offer.RawText, 30)))
	}
	return lines
}
