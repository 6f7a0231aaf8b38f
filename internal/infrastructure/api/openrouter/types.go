// internal/infrastructure/api/openrouter/types.go
package openrouter

import "p2p-offer-radar-bot/internal/core/domain/offers"

// chatRequest тело запроса chat/completions
type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse ответ chat/completions
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// rawExtraction - JSON, который модель обязана вернуть. Поддерживаются
// обе формы: одиночное предложение в корне и список в поле offers.
type rawExtraction struct {
	IsOffer bool `json:"is_offer"`

	Side     *string  `json:"side"`
	Price    *float64 `json:"price"`
	Volume   *string  `json:"volume"`
	Currency string   `json:"currency"`

	Offers []offers.ExtractedOffer `json:"offers"`
}

// toOffers приводит сырой результат к списку извлечённых предложений
func (r rawExtraction) toOffers() []offers.ExtractedOffer {
	if !r.IsOffer {
		return nil
	}
	if len(r.Offers) > 0 {
		return r.Offers
	}
	return []offers.ExtractedOffer{{
		Side:     r.Side,
		Price:    r.Price,
		Volume:   r.Volume,
		Currency: r.Currency,
	}}
}
