// internal/infrastructure/api/openrouter/client.go
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"p2p-offer-radar-bot/internal/core/domain/offers"
	"p2p-offer-radar-bot/internal/infrastructure/config"
)

// systemPrompt - базовая инструкция классификатора торговых сообщений
const systemPrompt = "Ты профессиональный p2p трейдер. Анализируй сообщения из чатов и извлекай торговые предложения.\n\n" +
	"**ПРАВИЛА:**\n" +
	"1. Если сообщение НЕ содержит торгового предложения (спам, вопросы, новости) — верни: {\"is_offer\": false}\n" +
	"2. Если сообщение содержит предложение купить/продать валюту — извлеки данные в JSON:\n" +
	"   {\n" +
	"     \"is_offer\": true,\n" +
	"     \"side\": \"buy\" | \"sell\",  // buy = автор ПОКУПАЕТ, sell = автор ПРОДАЕТ\n" +
	"     \"price\": number | null,    // Цена (курс обмена). Если не указана — null\n" +
	"     \"volume\": string | null,   // Объем ('10000', '50k', 'от 100'). Если не указан — null\n" +
	"     \"currency\": string          // Валюта (USDT, RUB, USD, CNY и т.д.)\n" +
	"   }\n\n" +
	"**ПРИМЕРЫ:**\n" +
	"Сообщение: 'Покупаем по 78' → {\"is_offer\": true, \"side\": \"buy\", \"price\": 78, \"volume\": null, \"currency\": \"RUB\"}\n" +
	"Сообщение: 'Продаем USD по курсу 78' → {\"is_offer\": true, \"side\": \"sell\", \"price\": 78, \"volume\": null, \"currency\": \"USD\"}\n" +
	"Сообщение: 'Всем привет!' → {\"is_offer\": false}\n\n" +
	"**ВАЖНО:** Отвечай ТОЛЬКО валидным JSON, без комментариев."

// Client - клиент LLM-классификатора сообщений через OpenRouter.
// Вызов ограничен таймаутом конфигурации; любая ошибка трактуется
// вызывающей стороной как "не предложение" и не роняет пайплайн.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient создаёт клиент OpenRouter
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.OpenRouter.Timeout},
		baseURL:    cfg.OpenRouter.BaseURL,
		apiKey:     cfg.OpenRouter.ApiKey,
		model:      cfg.OpenRouter.Model,
	}
}

// Enabled возвращает true, если клиент настроен ключом API
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// AnalyzeMessage отправляет текст сообщения на классификацию.
// Возвращает nil без ошибки, если модель не нашла предложения.
func (c *Client) AnalyzeMessage(ctx context.Context, text, contextHint string) ([]offers.ExtractedOffer, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("OpenRouterClient: ключ API не настроен")
	}

	instruction := systemPrompt
	if contextHint != "" {
		instruction += "\n\n**КОНТЕКСТ ПОИСКА:** " + contextHint
	}

	payload := chatRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []chatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: text},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("OpenRouterClient: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("OpenRouterClient: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenRouterClient: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("OpenRouterClient: статус %d: %s", resp.StatusCode, string(data))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("OpenRouterClient: decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("OpenRouterClient: пустой ответ модели")
	}

	content := stripMarkdownFence(chatResp.Choices[0].Message.Content)

	var raw rawExtraction
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("OpenRouterClient: некорректный JSON модели: %w", err)
	}

	return raw.toOffers(), nil
}

// stripMarkdownFence убирает обрамление ```json ... ``` из ответа модели
func stripMarkdownFence(content string) string {
	if !strings.Contains(content, "```") {
		return strings.TrimSpace(content)
	}

	parts := strings.Split(content, "```")
	if len(parts) < 2 {
		return strings.TrimSpace(content)
	}

	inner := strings.TrimSpace(parts[1])
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
