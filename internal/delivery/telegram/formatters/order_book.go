// internal/delivery/telegram/formatters/order_book.go
package formatters

import (
	"fmt"
	"strings"
	"time"

	"p2p-offer-radar-bot/internal/core/domain/orderbook"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
)

// OrderBookFormatter форматирует стакан заявок торговой сессии
type OrderBookFormatter struct{}

// NewOrderBookFormatter создает новый форматтер стакана
func NewOrderBookFormatter() *OrderBookFormatter {
	return &OrderBookFormatter{}
}

var paymentLabels = map[models.PaymentMethod]string{
	models.PaymentNonres:   "Нерез",
	models.PaymentCash:     "Нал",
	models.PaymentCashless: "Безнал",
}

// Format строит текстовый вид стакана для торговой сессии
func (f *OrderBookFormatter) Format(book orderbook.Book, session *models.TradingSession, now time.Time) string {
	directionText := "ПОКУПКА"
	if session.Direction == models.DirectionSell {
		directionText = "ПРОДАЖА"
	}

	currencyText := fmt.Sprintf("%s (за %s", session.CurrencyFrom, session.CurrencyTo)
	if session.PaymentMethod != nil {
		if label, ok := paymentLabels[*session.PaymentMethod]; ok {
			currencyText += " " + label
		}
	}
	currencyText += ")"

	timeLeft := "Время истекло"
	if remaining := session.RemainingTime(now); remaining > 0 {
		timeLeft = fmt.Sprintf("Осталось времени: %d мин.", int(remaining.Minutes()))
	}

	lines := []string{
		fmt.Sprintf("📊 Сбор заявок: %s %s", directionText, currencyText),
		timeLeft,
		"",
		"ТОП ПРЕДЛОЖЕНИЙ (Сортировка по выгодности):",
	}

	for _, entry := range book.Top(10) {
		username := fmt.Sprintf("ID:%d", entry.Order.UserID)
		if entry.Order.Username != "" {
			username = "@" + entry.Order.Username
		}
		lines = append(lines, fmt.Sprintf("%d. %s | %s | %s (%s)",
			entry.Rank, entry.DisplayPrice(), entry.DisplayVolume(), username, entry.GroupName))
	}

	if book.TotalVolume().IsPositive() {
		lines = append(lines, "",
			fmt.Sprintf("Всего объем в стакане: %s %s",
				book.TotalVolume().StringFixed(0), session.CurrencyFrom),
			fmt.Sprintf("Средневзвешенный курс: %.2f", book.WeightedAveragePrice()))
	}

	return strings.Join(lines, "\n")
}
