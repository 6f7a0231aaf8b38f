// internal/delivery/telegram/updates_handler.go
package telegram

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"p2p-offer-radar-bot/internal/infrastructure/config"
	"p2p-offer-radar-bot/pkg/logger"
)

// UpdateProcessor - получатель обновлений от Telegram
type UpdateProcessor interface {
	ProcessUpdate(update TelegramUpdate)
}

// UpdatesHandler - обработчик обновлений через long polling
type UpdatesHandler struct {
	config       *config.Config
	processor    UpdateProcessor
	lastUpdateID int64
	httpClient   *http.Client

	apiBase      string
	pollInterval time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	polling bool
}

// NewUpdatesHandler создает новый обработчик обновлений
func NewUpdatesHandler(cfg *config.Config, processor UpdateProcessor) *UpdatesHandler {
	return &UpdatesHandler{
		config:       cfg,
		processor:    processor,
		lastUpdateID: 0,
		apiBase:      "https://api.telegram.org",
		pollInterval: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Start запускает polling обновлений
func (uh *UpdatesHandler) Start() error {
	uh.mu.Lock()
	defer uh.mu.Unlock()

	if uh.polling {
		return nil
	}

	logger.Info("🔄 Запуск в режиме Polling...")

	// Удаляем webhook если был установлен
	if err := uh.deleteWebhook(); err != nil {
		logger.Warn("⚠️ Не удалось удалить webhook: %v", err)
	}

	logger.Info("🧹 Очистка старых обновлений Telegram...")
	if err := uh.clearPendingUpdates(); err != nil {
		logger.Warn("⚠️ Не удалось очистить старые обновления: %v", err)
		// Продолжаем даже при ошибке очистки
	} else {
		logger.Info("✅ Старые обновления очищены")
	}

	logger.Info("📊 Начальный offset для polling: %d", uh.lastUpdateID)

	uh.polling = true
	uh.stopCh = make(chan struct{})
	go uh.pollUpdates(uh.stopCh)

	return nil
}

// Stop останавливает обработчик
func (uh *UpdatesHandler) Stop() error {
	uh.mu.Lock()
	defer uh.mu.Unlock()

	if !uh.polling {
		return nil
	}
	close(uh.stopCh)
	uh.polling = false
	return nil
}

// pollUpdates опрашивает Telegram API на наличие обновлений.
// lastUpdateID после старта трогает только эта горутина.
func (uh *UpdatesHandler) pollUpdates(stopCh chan struct{}) {
	logger.Info("🔄 Начало polling обновлений...")

	ticker := time.NewTicker(uh.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			logger.Info("🛑 Polling остановлен")
			return
		case <-ticker.C:
			updates, err := uh.getUpdates()
			if err != nil {
				logger.Error("❌ Ошибка получения обновлений: %v", err)
				continue
			}

			for _, update := range updates {
				uh.dispatch(update)
				uh.lastUpdateID = update.UpdateID + 1
			}
		}
	}
}

// dispatch обрабатывает одно обновление
func (uh *UpdatesHandler) dispatch(update TelegramUpdate) {
	// Игнорируем старые сообщения (старше 5 минут)
	if uh.isOldUpdate(update) {
		logger.Debug("⏰ Пропускаем старое обновление ID %d", update.UpdateID)
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	uh.processor.ProcessUpdate(update)
}

// isOldUpdate проверяет, старое ли обновление
func (uh *UpdatesHandler) isOldUpdate(update TelegramUpdate) bool {
	if update.Message == nil || update.Message.Date == 0 {
		return false // Не можем определить - обрабатываем
	}

	messageTimestamp := time.Unix(update.Message.Date, 0)
	return time.Since(messageTimestamp) > 5*time.Minute
}

// methodURL строит URL метода Bot API
func (uh *UpdatesHandler) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", uh.apiBase, uh.config.Telegram.BotToken, method)
}

// getUpdates получает обновления от Telegram API
func (uh *UpdatesHandler) getUpdates() ([]TelegramUpdate, error) {
	params := map[string]interface{}{
		"offset":          uh.lastUpdateID,
		"timeout":         uh.config.Telegram.PollTimeout,
		"limit":           100,
		"allowed_updates": []string{"message"},
	}

	resp, err := uh.httpClient.Post(uh.methodURL("getUpdates"), "application/json", toJSONReader(params))
	if err != nil {
		return nil, fmt.Errorf("UpdatesHandler.getUpdates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("UpdatesHandler.getUpdates: read: %w", err)
	}

	var response updatesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("UpdatesHandler.getUpdates: parse: %w", err)
	}

	if !response.OK {
		return nil, fmt.Errorf("UpdatesHandler.getUpdates: telegram API: %s", response.Description)
	}

	return response.Result, nil
}

// clearPendingUpdates очищает очередь накопившихся обновлений
func (uh *UpdatesHandler) clearPendingUpdates() error {
	uh.lastUpdateID = 0

	params := map[string]interface{}{
		"offset":  -1,
		"limit":   1,
		"timeout": 1,
	}

	resp, err := uh.httpClient.Post(uh.methodURL("getUpdates"), "application/json", toJSONReader(params))
	if err != nil {
		return fmt.Errorf("UpdatesHandler.clearPendingUpdates: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var response updatesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("UpdatesHandler.clearPendingUpdates: parse: %w", err)
	}
	if !response.OK {
		return fmt.Errorf("UpdatesHandler.clearPendingUpdates: telegram API: %s", response.Description)
	}

	// Находим максимальный update_id и пропускаем все до него
	for _, update := range response.Result {
		if update.UpdateID >= uh.lastUpdateID {
			uh.lastUpdateID = update.UpdateID + 1
		}
	}

	return nil
}

// deleteWebhook удаляет webhook (polling и webhook взаимоисключающие)
func (uh *UpdatesHandler) deleteWebhook() error {
	params := map[string]interface{}{
		"drop_pending_updates": false,
	}

	resp, err := uh.httpClient.Post(uh.methodURL("deleteWebhook"), "application/json", toJSONReader(params))
	if err != nil {
		return fmt.Errorf("UpdatesHandler.deleteWebhook: %w", err)
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
	return nil
}

// toJSONReader конвертирует map в io.Reader с JSON
func toJSONReader(data interface{}) io.Reader {
	jsonData, _ := json.Marshal(data)
	return strings.NewReader(string(jsonData))
}
