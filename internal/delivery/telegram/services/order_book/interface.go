// internal/delivery/telegram/services/order_book/interface.go
package order_book

import (
	"p2p-offer-radar-bot/internal/core/domain/orderbook"
)

// Service строит стакан заявок торговой сессии из БД
type Service interface {
	// Build собирает стакан для сессии: pending-заявки с положительными
	// ценой и объемом, отсортированные по выгодности для сессии
	Build(sessionID int) (orderbook.Book, error)
	// FormatText строит стакан и возвращает его текстовый вид для табло
	FormatText(sessionID int) (string, error)
}
