// internal/core/domain/orderbook/order_book.go
package orderbook

import (
	"github.com/shopspring/decimal"

	"p2p-offer-radar-bot/internal/core/domain/offers"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
)

// Entry - позиция стакана: ордер с рангом и именем группы-источника
type Entry struct {
	Order     *models.Order
	Rank      int // 1-based
	GroupName string
}

// DisplayPrice цена для вывода
func (e Entry) DisplayPrice() string {
	return e.Order.Price.StringFixed(2)
}

// DisplayVolume объем для вывода
func (e Entry) DisplayVolume() string {
	return e.Order.Volume.StringFixed(0)
}

// Book - ранжированный стакан заявок торговой сессии
type Book struct {
	SessionID int
	Entries   []Entry
}

// sideOf приводит направление сессии к стороне движка ранжирования
func sideOf(direction models.TradeDirection) offers.Side {
	if direction == models.DirectionSell {
		return offers.SideSell
	}
	return offers.SideBuy
}

// Build строит стакан по уже загруженным записям: оставляет только
// ожидающие, встречные и численно корректные ордера, сортирует их
// по выгодности для направления сессии и присваивает ранги.
// Загрузка данных - забота вызывающей стороны, ввода-вывода здесь нет.
func Build(session *models.TradingSession, orders []*models.Order, groupNames map[int]string) Book {
	if session == nil {
		return Book{}
	}

	var valid []*models.Order
	for _, order := range orders {
		if order.Status != models.OrderPending {
			continue
		}
		if !order.IsValid() || !order.MatchesSession(session) {
			continue
		}
		valid = append(valid, order)
	}

	offers.SortByFavorability(valid, sideOf(session.Direction), func(o *models.Order) float64 {
		return o.Price.InexactFloat64()
	})

	entries := make([]Entry, 0, len(valid))
	for idx, order := range valid {
		name, ok := groupNames[order.GroupID]
		if !ok {
			name = "Unknown"
		}
		entries = append(entries, Entry{
			Order:     order,
			Rank:      idx + 1,
			GroupName: name,
		})
	}

	return Book{SessionID: session.ID, Entries: entries}
}

// Top возвращает первые limit позиций стакана
func (b Book) Top(limit int) []Entry {
	if len(b.Entries) > limit {
		return b.Entries[:limit]
	}
	return b.Entries
}

// TotalVolume суммарный объем всех позиций стакана
func (b Book) TotalVolume() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range b.Entries {
		total = total.Add(entry.Order.Volume)
	}
	return total
}

// WeightedAveragePrice средневзвешенный по объему курс. Здесь, в
// отличие от живого табло, объемы численные, поэтому взвешивание
// легитимно. Пустой стакан даёт 0.
func (b Book) WeightedAveragePrice() float64 {
	weighted := make([]offers.Weighted, 0, len(b.Entries))
	for _, entry := range b.Entries {
		weighted = append(weighted, offers.Weighted{
			Price:  entry.Order.Price.InexactFloat64(),
			Weight: entry.Order.Volume.InexactFloat64(),
		})
	}
	return offers.WeightedAverage(weighted)
}
