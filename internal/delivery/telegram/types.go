// internal/delivery/telegram/types.go
package telegram

// TelegramUpdate - обновление от Telegram API
type TelegramUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *TelegramMessage `json:"message,omitempty"`
}

// TelegramMessage - входящее сообщение
type TelegramMessage struct {
	MessageID int64         `json:"message_id"`
	From      *TelegramUser `json:"from,omitempty"`
	Chat      TelegramChat  `json:"chat"`
	Date      int64         `json:"date"`
	Text      string        `json:"text"`
}

// TelegramUser - отправитель сообщения
type TelegramUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName возвращает имя для табло: @username или имя
func (u *TelegramUser) DisplayName() string {
	if u == nil {
		return "Unknown"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "Unknown"
}

// TelegramChat - чат-источник сообщения
type TelegramChat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"` // private, group, supergroup
	Title string `json:"title"`
}

// IsGroup возвращает true для групп и супергрупп
func (c TelegramChat) IsGroup() bool {
	return c.Type == "group" || c.Type == "supergroup"
}

// apiResponse - обёртка ответа Telegram API
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// updatesResponse - ответ getUpdates
type updatesResponse struct {
	OK          bool             `json:"ok"`
	Description string           `json:"description"`
	Result      []TelegramUpdate `json:"result"`
}
