// internal/core/domain/offers/ranking.go
package offers

import (
	"sort"
)

// Лимиты вывода по умолчанию
const (
	DefaultTopLimit   = 10 // Топ предложений
	DefaultOtherLimit = 5  // Хвост "прочих" сообщений
)

// RankParams параметры ранжирования
type RankParams struct {
	// Direction - намерение запрашивающего (мы покупаем или продаем).
	// Для ранжирования отбираются ВСТРЕЧНЫЕ предложения.
	Direction Side

	// TargetRate - целевой курс. 0 означает отсутствие фильтра по курсу.
	// При покупке отсекаются цены выше целевой, при продаже - ниже.
	TargetRate float64

	// IncludeUnknownSide - учитывать ли предложения с неопределённой
	// стороной как условно встречные
	IncludeUnknownSide bool

	TopLimit   int
	OtherLimit int
}

// normalized возвращает параметры с подставленными лимитами по умолчанию
func (p RankParams) normalized() RankParams {
	if p.TopLimit <= 0 {
		p.TopLimit = DefaultTopLimit
	}
	if p.OtherLimit <= 0 {
		p.OtherLimit = DefaultOtherLimit
	}
	return p
}

// RankedList упорядоченный список предложений с агрегатом
type RankedList struct {
	Offers  []Offer
	Average float64 // Средняя цена, 0 если список пуст
}

// DirectionalResult результат ранжирования в направленном режиме
type DirectionalResult struct {
	Ranked RankedList
	// Other - предложения, не прошедшие фильтр, от новых к старым
	Other []Offer
}

// BroadcastResult результат ранжирования в ненаправленном режиме
type BroadcastResult struct {
	Sell RankedList // по возрастанию цены (взгляд покупателя)
	Buy  RankedList // по убыванию цены (взгляд продавца)
	// Other - предложения без цены и стороны, от новых к старым
	Other []Offer
	// Spread = Sell.Average - Buy.Average, валиден только при HasSpread
	Spread    float64
	HasSpread bool
}

// Weighted цена с весом для расчёта среднего курса. Вес 1 у каждой
// позиции даёт арифметическое среднее, численный объем -
// средневзвешенный курс стакана.
type Weighted struct {
	Price  float64
	Weight float64
}

// WeightedAverage возвращает средний курс по весам. Пустой вход или
// нулевая сумма весов дают 0, деления на ноль не происходит.
func WeightedAverage(items []Weighted) float64 {
	var total, weights float64
	for _, it := range items {
		total += it.Price * it.Weight
		weights += it.Weight
	}
	if weights == 0 {
		return 0
	}
	return total / weights
}

// SortByFavorability устойчиво сортирует элементы по выгодности цены
// для заданного направления сессии: покупателю важна низкая цена
// (по возрастанию), продавцу - высокая (по убыванию).
func SortByFavorability[T any](items []T, direction Side, price func(T) float64) {
	ascending := direction != SideSell
	sort.SliceStable(items, func(i, j int) bool {
		if ascending {
			return price(items[i]) < price(items[j])
		}
		return price(items[i]) > price(items[j])
	})
}

// WithinTarget проверяет, укладывается ли цена в целевой курс.
// target <= 0 отключает фильтр.
func WithinTarget(direction Side, price, target float64) bool {
	if target <= 0 {
		return true
	}
	if direction == SideSell {
		return price >= target
	}
	return price <= target
}

// RankDirectional отбирает встречные предложения с ценой, отсеивает
// не прошедшие целевой курс и сортирует оставшиеся по выгодности.
// Всё, что не попало в ранжирование, уходит в Other (новые первыми).
func RankDirectional(all []Offer, params RankParams) DirectionalResult {
	params = params.normalized()
	counterSide := params.Direction.Opposite()

	var ranked []Offer
	var other []Offer
	for _, offer := range all {
		sideOK := offer.Side == counterSide ||
			(!offer.Side.IsKnown() && params.IncludeUnknownSide)
		if !sideOK || !offer.HasPrice() {
			other = append(other, offer)
			continue
		}
		if !WithinTarget(params.Direction, offer.PriceValue(), params.TargetRate) {
			other = append(other, offer)
			continue
		}
		ranked = append(ranked, offer)
	}

	SortByFavorability(ranked, params.Direction, Offer.PriceValue)

	return DirectionalResult{
		Ranked: RankedList{
			Offers:  ranked,
			Average: arithmeticMean(ranked),
		},
		Other: lastReversed(other, params.OtherLimit),
	}
}

// RankBroadcast разбивает предложения по явной стороне на два
// независимых списка, каждый отсортирован с точки зрения его
// встречной стороны. Предложения без цены или стороны уходят в Other.
func RankBroadcast(all []Offer, params RankParams) BroadcastResult {
	params = params.normalized()

	var sells, buys []Offer
	var other []Offer
	for _, offer := range all {
		if !offer.HasPrice() || !offer.Side.IsKnown() {
			other = append(other, offer)
			continue
		}
		if offer.Side == SideSell {
			sells = append(sells, offer)
		} else {
			buys = append(buys, offer)
		}
	}

	// Продавцов ранжируем как покупатель, покупателей - как продавец
	SortByFavorability(sells, SideBuy, Offer.PriceValue)
	SortByFavorability(buys, SideSell, Offer.PriceValue)

	sells = capList(sells, params.TopLimit)
	buys = capList(buys, params.TopLimit)

	result := BroadcastResult{
		Sell:  RankedList{Offers: sells, Average: arithmeticMean(sells)},
		Buy:   RankedList{Offers: buys, Average: arithmeticMean(buys)},
		Other: lastReversed(other, params.OtherLimit),
	}

	if len(sells) > 0 && len(buys) > 0 {
		result.Spread = result.Sell.Average - result.Buy.Average
		result.HasSpread = true
	}

	return result
}

// arithmeticMean среднее по ценам списка, 0 для пустого
func arithmeticMean(list []Offer) float64 {
	weighted := make([]Weighted, 0, len(list))
	for _, offer := range list {
		weighted = append(weighted, Weighted{Price: offer.PriceValue(), Weight: 1})
	}
	return WeightedAverage(weighted)
}

// lastReversed возвращает последние limit элементов от новых к старым
func lastReversed(list []Offer, limit int) []Offer {
	if len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]Offer, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out
}

func capList(list []Offer, limit int) []Offer {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
