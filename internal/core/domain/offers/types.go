// internal/core/domain/offers/types.go
package offers

import (
	"time"
)

// Side сторона торгового предложения
type Side string

const (
	SideBuy  Side = "buy"  // автор сообщения ПОКУПАЕТ
	SideSell Side = "sell" // автор сообщения ПРОДАЕТ
	// SideUnknown означает, что классификатор не смог определить сторону.
	// Такие предложения не отбрасываются молча — политика их учёта
	// задаётся параметром ранжирования IncludeUnknownSide.
	SideUnknown Side = ""
)

// Opposite возвращает встречную сторону
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	}
	return SideUnknown
}

// IsKnown возвращает true, если сторона определена
func (s Side) IsKnown() bool {
	return s == SideBuy || s == SideSell
}

// Offer - одно извлечённое торговое предложение из сообщения.
// Создаётся один раз и далее не изменяется.
type Offer struct {
	Side       Side
	Price      *float64 // Цена (курс обмена), nil если не указана
	Volume     *string  // Объем как свободный текст ("10000", "50k", "от 100"), nil если не указан
	Currency   string
	User       string // Отображаемое имя отправителя (@username или имя)
	Group      string // Название группы-источника
	ReceivedAt time.Time
	Text       string // Укороченная строка для отображения
	RawText    string // Полный исходный текст сообщения
}

// HasPrice возвращает true, если у предложения указана цена
func (o Offer) HasPrice() bool {
	return o.Price != nil
}

// PriceValue возвращает цену или 0, если она не указана
func (o Offer) PriceValue() float64 {
	if o.Price == nil {
		return 0
	}
	return *o.Price
}

// VolumeText возвращает объем или пустую строку
func (o Offer) VolumeText() string {
	if o.Volume == nil {
		return ""
	}
	return *o.Volume
}

// ExtractedOffer - предложение в том виде, как его вернул классификатор.
// Все необязательные поля - указатели: каждый потребитель обязан
// явно обработать их отсутствие.
type ExtractedOffer struct {
	Side     *string  `json:"side"`
	Price    *float64 `json:"price"`
	Volume   *string  `json:"volume"`
	Currency string   `json:"currency"`
}

// ParsedSide преобразует строку классификатора в Side
func (e ExtractedOffer) ParsedSide() Side {
	if e.Side == nil {
		return SideUnknown
	}
	switch *e.Side {
	case "buy":
		return SideBuy
	case "sell":
		return SideSell
	}
	return SideUnknown
}

// ExtractionResult - размеченный результат классификации сообщения:
// либо "не предложение", либо список извлечённых предложений.
type ExtractionResult struct {
	IsOffer bool             `json:"is_offer"`
	Offers  []ExtractedOffer `json:"offers"`
}
