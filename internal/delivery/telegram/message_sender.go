// internal/delivery/telegram/message_sender.go
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"p2p-offer-radar-bot/internal/infrastructure/config"
	"p2p-offer-radar-bot/pkg/logger"
)

// MessageSender интерфейс для отправки сообщений
type MessageSender interface {
	// SendMessage отправляет сообщение и возвращает его message_id
	SendMessage(chatID int64, text string) (int64, error)
	// EditMessageText редактирует сообщение на месте
	EditMessageText(chatID, messageID int64, text string) error
	// EditOrSend редактирует сообщение, а при нулевом messageID
	// отправляет новое. Возвращает message_id для последующих правок.
	EditOrSend(chatID, messageID int64, text string) (int64, error)
}

// MessageSenderImpl реализация MessageSender поверх Telegram Bot API
type MessageSenderImpl struct {
	httpClient *http.Client
	baseURL    string
	enabled    bool
}

// NewMessageSender создает новый MessageSender
func NewMessageSender(cfg *config.Config) MessageSender {
	return &MessageSenderImpl{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    fmt.Sprintf("https://api.telegram.org/bot%s/", cfg.Telegram.BotToken),
		enabled:    cfg.Telegram.Enabled,
	}
}

// SendMessage отправляет сообщение и возвращает его message_id
func (ms *MessageSenderImpl) SendMessage(chatID int64, text string) (int64, error) {
	if !ms.enabled {
		logger.Warn("⚠️ Telegram отключен, пропуск отправки сообщения")
		return 0, nil
	}

	request := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	resp, err := ms.sendTelegramRequest("sendMessage", request)
	if err != nil {
		return 0, err
	}
	return resp.Result.MessageID, nil
}

// EditMessageText редактирует сообщение на месте
func (ms *MessageSenderImpl) EditMessageText(chatID, messageID int64, text string) error {
	if !ms.enabled {
		return nil
	}

	request := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	_, err := ms.sendTelegramRequest("editMessageText", request)
	return err
}

// EditOrSend редактирует сообщение, при нулевом messageID отправляет новое
func (ms *MessageSenderImpl) EditOrSend(chatID, messageID int64, text string) (int64, error) {
	if messageID == 0 {
		return ms.SendMessage(chatID, text)
	}
	if err := ms.EditMessageText(chatID, messageID, text); err != nil {
		return messageID, err
	}
	return messageID, nil
}

// sendTelegramRequest выполняет запрос к Telegram Bot API
func (ms *MessageSenderImpl) sendTelegramRequest(method string, request map[string]interface{}) (*apiResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("MessageSender.%s: marshal: %w", method, err)
	}

	resp, err := ms.httpClient.Post(ms.baseURL+method, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("MessageSender.%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("MessageSender.%s: read: %w", method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, fmt.Errorf("MessageSender.%s: parse: %w", method, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("MessageSender.%s: telegram API: %s", method, apiResp.Description)
	}

	return &apiResp, nil
}
