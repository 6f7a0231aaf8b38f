// internal/delivery/telegram/bot.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"p2p-offer-radar-bot/internal/core/domain/broadcast"
	"p2p-offer-radar-bot/internal/core/domain/offers"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/broadcast_monitor"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/order_book"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/orders"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/trading_session"
	"p2p-offer-radar-bot/internal/infrastructure/config"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/group"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/users"
	"p2p-offer-radar-bot/pkg/logger"
	"p2p-offer-radar-bot/pkg/utils"
)

// TelegramBot - точка входа обработки обновлений: команды администратора
// в личных чатах и сообщения из отслеживаемых групп
type TelegramBot struct {
	config  *config.Config
	sender  MessageSender
	manager *broadcast.Manager

	monitor        broadcast_monitor.Service
	sessionService trading_session.Service
	bookService    order_book.Service
	orderService   orders.Service

	groupRepo group_repo.GroupRepository
	usersRepo users_repo.UserRepository
}

// NewTelegramBot создает нового бота
func NewTelegramBot(
	cfg *config.Config,
	sender MessageSender,
	manager *broadcast.Manager,
	monitor broadcast_monitor.Service,
	sessionService trading_session.Service,
	bookService order_book.Service,
	orderService orders.Service,
	groupRepo group_repo.GroupRepository,
	usersRepo users_repo.UserRepository,
) *TelegramBot {
	return &TelegramBot{
		config:         cfg,
		sender:         sender,
		manager:        manager,
		monitor:        monitor,
		sessionService: sessionService,
		bookService:    bookService,
		orderService:   orderService,
		groupRepo:      groupRepo,
		usersRepo:      usersRepo,
	}
}

// ProcessUpdate обрабатывает одно обновление от Telegram
func (b *TelegramBot) ProcessUpdate(update TelegramUpdate) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	if msg.Chat.IsGroup() {
		b.handleGroupMessage(msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "/") {
		b.handleCommand(text, msg)
	}
}

// handleGroupMessage передает сообщение из группы драйверу сессии
func (b *TelegramBot) handleGroupMessage(msg *TelegramMessage) {
	// Группа регистрируется при первом сообщении из неё
	// Tags не nil: колонка tags в БД объявлена NOT NULL
	if _, err := b.groupRepo.Upsert(&models.Group{
		TelegramID: msg.Chat.ID,
		Title:      msg.Chat.Title,
		Status:     models.GroupActive,
		Tags:       pq.StringArray{},
	}); err != nil {
		logger.Warn("⚠️ Не удалось зарегистрировать группу %d: %v", msg.Chat.ID, err)
	}

	if msg.From != nil {
		fullName := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
		if _, err := b.usersRepo.Upsert(&models.User{
			TelegramID: msg.From.ID,
			Username:   msg.From.Username,
			FullName:   fullName,
		}); err != nil {
			logger.Warn("⚠️ Не удалось зарегистрировать пользователя %d: %v", msg.From.ID, err)
		}
	}

	b.monitor.HandleGroupMessage(context.Background(), broadcast_monitor.InboundMessage{
		ChatID:     msg.Chat.ID,
		User:       msg.From.DisplayName(),
		Group:      msg.Chat.Title,
		Text:       msg.Text,
		ReceivedAt: time.Unix(msg.Date, 0),
	})
}

// handleCommand обрабатывает команду из личного чата
func (b *TelegramBot) handleCommand(text string, msg *TelegramMessage) {
	parts := strings.Fields(text)
	command := parts[0]
	args := parts[1:]

	logger.Info("⚡ Команда %s от чата %d", command, msg.Chat.ID)

	switch command {
	case "/start", "/help":
		b.replySwallow(msg.Chat.ID, helpText)
		return
	}

	if msg.From == nil || !b.config.IsAdmin(msg.From.ID) {
		b.replySwallow(msg.Chat.ID, "🔐 Команда доступна только администраторам.")
		return
	}

	switch command {
	case "/groups":
		b.handleGroups(msg.Chat.ID)
	case "/broadcast":
		b.handleBroadcast(msg, args)
	case "/broadcast_custom":
		b.handleBroadcastCustom(msg, args)
	case "/stop":
		b.handleStop(msg.Chat.ID)
	case "/status":
		b.handleStatus(msg.Chat.ID)
	case "/order_book":
		b.handleOrderBook(msg.Chat.ID, args)
	case "/order_add":
		b.handleOrderAdd(msg, args)
	case "/order_accept":
		b.handleOrderStatus(msg.Chat.ID, args, b.orderService.Accept)
	case "/order_reject":
		b.handleOrderStatus(msg.Chat.ID, args, b.orderService.Reject)
	default:
		b.replySwallow(msg.Chat.ID, fmt.Sprintf("❓ Неизвестная команда: %s. Используйте /help", command))
	}
}

// handleGroups выводит список отслеживаемых групп
func (b *TelegramBot) handleGroups(chatID int64) {
	groups, err := b.groupRepo.FindActive()
	if err != nil {
		b.replySwallow(chatID, fmt.Sprintf("❌ Ошибка загрузки групп: %v", err))
		return
	}
	if len(groups) == 0 {
		b.replySwallow(chatID, "📋 Список групп пуст. Группы добавляются автоматически при появлении сообщений.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 *Список групп:*\n\n")
	for idx, group := range groups {
		tags := "нет тегов"
		if len(group.Tags) > 0 {
			tags = strings.Join(group.Tags, ", ")
		}
		sb.WriteString(fmt.Sprintf("%d. ✅ %s\n   ID: %d | Теги: %s\n\n",
			idx+1, group.Title, group.TelegramID, tags))
	}
	b.replySwallow(chatID, sb.String())
}

// handleBroadcast запускает направленный сбор заявок:
// /broadcast <buy|sell> <FROM> <TO> [rate] [minutes]
func (b *TelegramBot) handleBroadcast(msg *TelegramMessage, args []string) {
	if len(args) < 3 {
		b.replySwallow(msg.Chat.ID, "❌ Использование: /broadcast <buy|sell> <FROM> <TO> [курс] [минуты]")
		return
	}

	var direction models.TradeDirection
	switch strings.ToLower(args[0]) {
	case "buy":
		direction = models.DirectionBuy
	case "sell":
		direction = models.DirectionSell
	default:
		b.replySwallow(msg.Chat.ID, "❌ Направление должно быть buy или sell.")
		return
	}

	currencyFrom := strings.ToUpper(args[1])
	currencyTo := strings.ToUpper(args[2])

	var targetRate *float64
	if len(args) >= 4 {
		rate, err := strconv.ParseFloat(args[3], 64)
		if err != nil || rate <= 0 {
			b.replySwallow(msg.Chat.ID, "❌ Целевой курс должен быть положительным числом.")
			return
		}
		targetRate = &rate
	}

	minutes := int(b.config.Broadcast.DefaultDuration.Minutes())
	if len(args) >= 5 {
		parsed, err := utils.ParseDurationMinutes(args[4])
		if err != nil {
			b.replySwallow(msg.Chat.ID, fmt.Sprintf("❌ %v", err))
			return
		}
		minutes = parsed
	}

	session, err := b.sessionService.Create(trading_session.CreateParams{
		Direction:    direction,
		CurrencyFrom: currencyFrom,
		CurrencyTo:   currencyTo,
		TargetRate:   targetRate,
		TTLMinutes:   minutes,
	})
	if err != nil {
		b.replySwallow(msg.Chat.ID, fmt.Sprintf("❌ Не удалось создать сессию: %v", err))
		return
	}
	if err := b.sessionService.Activate(session.ID); err != nil {
		b.replySwallow(msg.Chat.ID, fmt.Sprintf("❌ Не удалось активировать сессию: %v", err))
		return
	}

	groups, err := b.sessionService.TargetGroups(session)
	if err != nil {
		b.replySwallow(msg.Chat.ID, fmt.Sprintf("❌ Ошибка загрузки групп: %v", err))
		return
	}
	if len(groups) == 0 {
		b.replySwallow(msg.Chat.ID, "⚠️ Нет активных групп для рассылки.")
		return
	}

	announcement := b.buildAnnouncement(session)
	chatIDs := b.announce(groups, announcement)

	mode := broadcast.ModeDirectional
	side := offers.SideBuy
	if direction == models.DirectionSell {
		side = offers.SideSell
	}

	b.manager.Start(broadcast.StartParams{
		OwnerID:      msg.From.ID,
		Duration:     time.Duration(minutes) * time.Minute,
		ChatIDs:      chatIDs,
		Mode:         mode,
		Direction:    side,
		CurrencyFrom: currencyFrom,
		CurrencyTo:   currencyTo,
		TargetRate:   session.TargetRateValue(),
	})

	b.postDashboardSeed(msg.Chat.ID)
	b.replySwallow(msg.Chat.ID, fmt.Sprintf(
		"✅ Рассылка активна! Сессия #%d, групп: %d. Сводка выше будет обновляться в реальном времени.",
		session.ID, len(chatIDs)))
}

// handleBroadcastCustom запускает ненаправленный сбор:
// /broadcast_custom [minutes]
func (b *TelegramBot) handleBroadcastCustom(msg *TelegramMessage, args []string) {
	minutes := int(b.config.Broadcast.DefaultDuration.Minutes())
	if len(args) >= 1 {
		parsed, err := utils.ParseDurationMinutes(args[0])
		if err != nil {
			b.replySwallow(msg.Chat.ID, fmt.Sprintf("❌ %v", err))
			return
		}
		minutes = parsed
	}

	groups, err := b.groupRepo.FindActive()
	if err != nil {
		b.replySwallow(msg.Chat.ID, fmt.Sprintf("❌ Ошибка загрузки групп: %v", err))
		return
	}
	if len(groups) == 0 {
		b.replySwallow(msg.Chat.ID, "⚠️ Нет активных групп для рассылки.")
		return
	}

	chatIDs := make([]int64, 0, len(groups))
	for _, group := range groups {
		chatIDs = append(chatIDs, group.TelegramID)
	}

	b.manager.Start(broadcast.StartParams{
		OwnerID:  msg.From.ID,
		Duration: time.Duration(minutes) * time.Minute,
		ChatIDs:  chatIDs,
		Mode:     broadcast.ModeBroadcast,
	})

	b.postDashboardSeed(msg.Chat.ID)
	b.replySwallow(msg.Chat.ID, fmt.Sprintf(
		"✅ Произвольный сбор активен на %d мин. в %d группах.", minutes, len(chatIDs)))
}

// handleStop останавливает активное окно мониторинга
func (b *TelegramBot) handleStop(chatID int64) {
	if !b.manager.IsMonitoring(0) {
		b.replySwallow(chatID, "ℹ️ Активного сбора нет.")
		return
	}
	b.manager.Stop()
	b.replySwallow(chatID, "🛑 Сбор заявок остановлен.")
}

// handleStatus сообщает состояние активного окна
func (b *TelegramBot) handleStatus(chatID int64) {
	snap, ok := b.manager.Snapshot()
	if !ok {
		b.replySwallow(chatID, "ℹ️ Активного сбора нет.")
		return
	}
	b.replySwallow(chatID, fmt.Sprintf(
		"📊 Сбор активен: режим %s, групп %d, сообщений %d, осталось %s.",
		snap.Mode, len(snap.ChatIDs), len(snap.Offers),
		utils.FormatDuration(snap.Remaining(time.Now()))))
}

// handleOrderBook выводит стакан заявок: /order_book <session_id>
func (b *TelegramBot) handleOrderBook(chatID int64, args []string) {
	if len(args) < 1 {
		b.replySwallow(chatID, "❌ Использование: /order_book <session_id>")
		return
	}
	sessionID, err := strconv.Atoi(args[0])
	if err != nil {
		b.replySwallow(chatID, "❌ ID сессии должен быть числом.")
		return
	}

	text, err := b.bookService.FormatText(sessionID)
	if err != nil {
		b.replySwallow(chatID, fmt.Sprintf("❌ %v", err))
		return
	}
	b.replySwallow(chatID, text)
}

// handleOrderAdd вручную добавляет заявку в стакан:
// /order_add <session_id> <buy|sell> <price> <volume> <currency> [chat_id]
func (b *TelegramBot) handleOrderAdd(msg *TelegramMessage, args []string) {
	if len(args) < 5 {
		b.replySwallow(msg.Chat.ID,
			"❌ Использование: /order_add <session_id> <buy|sell> <цена> <объем> <валюта> [chat_id]")
		return
	}

	sessionID, err := strconv.Atoi(args[0])
	if err != nil {
		b.replySwallow(msg.Chat.ID, "❌ ID сессии должен быть числом.")
		return
	}

	var side models.TradeDirection
	switch strings.ToLower(args[1]) {
	case "buy":
		side = models.DirectionBuy
	case "sell":
		side = models.DirectionSell
	default:
		b.replySwallow(msg.Chat.ID, "❌ Сторона должна быть buy или sell.")
		return
	}

	price, err := decimal.NewFromString(args[2])
	if err != nil {
		b.replySwallow(msg.Chat.ID, "❌ Цена должна быть числом.")
		return
	}
	volume, err := decimal.NewFromString(args[3])
	if err != nil {
		b.replySwallow(msg.Chat.ID, "❌ Объем должен быть числом.")
		return
	}

	// Группа задается Telegram ID, как в выводе /groups. Без группы
	// заявка сохраняется без привязки к источнику.
	groupID := 0
	if len(args) >= 6 {
		chatID, err := strconv.ParseInt(args[5], 10, 64)
		if err != nil {
			b.replySwallow(msg.Chat.ID, "❌ ID группы должен быть числом.")
			return
		}
		group, err := b.groupRepo.GetByTelegramID(chatID)
		if err != nil {
			b.replySwallow(msg.Chat.ID, fmt.Sprintf("❌ %v", err))
			return
		}
		if group == nil {
			b.replySwallow(msg.Chat.ID, fmt.Sprintf("❌ Группа %d не найдена.", chatID))
			return
		}
		groupID = group.ID
	}

	order, err := b.orderService.Submit(orders.SubmitParams{
		SessionID: sessionID,
		GroupID:   groupID,
		UserID:    msg.From.ID,
		Username:  msg.From.Username,
		Side:      side,
		Price:     price,
		Volume:    volume,
		Currency:  strings.ToUpper(args[4]),
	})
	if err != nil {
		b.replySwallow(msg.Chat.ID, fmt.Sprintf("❌ %v", err))
		return
	}
	b.replySwallow(msg.Chat.ID, fmt.Sprintf("✅ Заявка #%d добавлена в сессию #%d.", order.ID, sessionID))
}

// handleOrderStatus переводит заявку в новый статус: /order_accept или /order_reject
func (b *TelegramBot) handleOrderStatus(chatID int64, args []string, apply func(int) error) {
	if len(args) < 1 {
		b.replySwallow(chatID, "❌ Укажите ID заявки.")
		return
	}
	orderID, err := strconv.Atoi(args[0])
	if err != nil {
		b.replySwallow(chatID, "❌ ID заявки должен быть числом.")
		return
	}
	if err := apply(orderID); err != nil {
		b.replySwallow(chatID, fmt.Sprintf("❌ %v", err))
		return
	}
	b.replySwallow(chatID, fmt.Sprintf("✅ Статус заявки #%d обновлен.", orderID))
}

// buildAnnouncement строит текст объявления для рассылки в группы
func (b *TelegramBot) buildAnnouncement(session *models.TradingSession) string {
	action := "Куплю"
	if session.Direction == models.DirectionSell {
		action = "Продам"
	}

	text := fmt.Sprintf("📢 %s %s за %s.", action, session.CurrencyFrom, session.CurrencyTo)
	if session.TargetRate != nil {
		text += fmt.Sprintf(" Целевой курс: %s.", utils.FormatPrice(*session.TargetRate, 2))
	}
	text += " Пишите ваши предложения в этот чат."
	return text
}

// announce отправляет объявление в группы, возвращает ID доставленных чатов
func (b *TelegramBot) announce(groups []*models.Group, text string) []int64 {
	chatIDs := make([]int64, 0, len(groups))
	for _, group := range groups {
		if _, err := b.sender.SendMessage(group.TelegramID, text); err != nil {
			logger.Error("❌ Рассылка в группу %d не удалась: %v", group.TelegramID, err)
			continue
		}
		chatIDs = append(chatIDs, group.TelegramID)
		time.Sleep(1 * time.Second) // Анти-флуд
	}
	return chatIDs
}

// postDashboardSeed отправляет первое сообщение-табло и привязывает его
// к сессии для дальнейшего редактирования на месте
func (b *TelegramBot) postDashboardSeed(chatID int64) {
	messageID, err := b.sender.SendMessage(chatID, "⏳ Ожидаю первые сообщения...")
	if err != nil {
		logger.Warn("⚠️ Табло не создалось: %v", err)
		return
	}
	b.manager.RegisterOutput(chatID, messageID)
	b.monitor.PushDashboard()
}

// replySwallow отправляет ответ, проглатывая ошибки доставки
func (b *TelegramBot) replySwallow(chatID int64, text string) {
	if _, err := b.sender.SendMessage(chatID, text); err != nil {
		logger.Warn("⚠️ Не удалось отправить ответ в чат %d: %v", chatID, err)
	}
}

const helpText = "🤖 *P2P Offer Radar Bot*\n\n" +
	"Бот собирает и агрегирует ликвидность из OTC групп.\n\n" +
	"*Команды администратора:*\n" +
	"/groups — список отслеживаемых групп\n" +
	"/broadcast <buy|sell> <FROM> <TO> [курс] [минуты] — направленный сбор заявок\n" +
	"/broadcast\\_custom [минуты] — произвольный сбор (обе стороны)\n" +
	"/stop — остановить активный сбор\n" +
	"/status — состояние активного сбора\n" +
	"/order\\_book <id> — стакан заявок торговой сессии\n" +
	"/order\\_add <id> <buy|sell> <цена> <объем> <валюта> [chat\\_id] — добавить заявку вручную\n" +
	"/order\\_accept <id>, /order\\_reject <id> — решение по заявке\n" +
	"/help — эта справка"
