package telegram

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"p2p-offer-radar-bot/internal/core/domain/broadcast"
	"p2p-offer-radar-bot/internal/core/domain/orderbook"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/broadcast_monitor"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/orders"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/trading_session"
	"p2p-offer-radar-bot/internal/infrastructure/config"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
)

// fakeBotSender записывает отправленные сообщения
type fakeBotSender struct {
	sent   []string
	nextID int64
}

func (f *fakeBotSender) SendMessage(chatID int64, text string) (int64, error) {
	f.sent = append(f.sent, text)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeBotSender) EditMessageText(chatID, messageID int64, text string) error { return nil }

func (f *fakeBotSender) EditOrSend(chatID, messageID int64, text string) (int64, error) {
	return messageID, nil
}

func (f *fakeBotSender) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

// fakeMonitor записывает переданные сообщения из групп
type fakeMonitor struct {
	inbound []broadcast_monitor.InboundMessage
	pushes  int
}

func (f *fakeMonitor) HandleGroupMessage(_ context.Context, msg broadcast_monitor.InboundMessage) {
	f.inbound = append(f.inbound, msg)
}

func (f *fakeMonitor) PushDashboard() { f.pushes++ }

// fakeSessionSvc записывает параметры создания сессии
type fakeSessionSvc struct {
	createParams *trading_session.CreateParams
	session      *models.TradingSession
	groups       []*models.Group
}

func (f *fakeSessionSvc) Create(params trading_session.CreateParams) (*models.TradingSession, error) {
	f.createParams = &params
	f.session = &models.TradingSession{
		ID:           5,
		Direction:    params.Direction,
		CurrencyFrom: params.CurrencyFrom,
		CurrencyTo:   params.CurrencyTo,
		TargetRate:   params.TargetRate,
		TTLMinutes:   params.TTLMinutes,
		Status:       models.SessionCreated,
		CreatedAt:    time.Now(),
	}
	return f.session, nil
}

func (f *fakeSessionSvc) Get(id int) (*models.TradingSession, error) { return f.session, nil }

func (f *fakeSessionSvc) Activate(id int) error { return nil }

func (f *fakeSessionSvc) Complete(id int) error { return nil }

func (f *fakeSessionSvc) TargetGroups(session *models.TradingSession) ([]*models.Group, error) {
	return f.groups, nil
}

func (f *fakeSessionSvc) StartSweeper() {}

func (f *fakeSessionSvc) StopSweeper() {}

// fakeBookSvc возвращает фиксированный текст стакана
type fakeBookSvc struct{}

func (f *fakeBookSvc) Build(sessionID int) (orderbook.Book, error) {
	return orderbook.Book{SessionID: sessionID}, nil
}

func (f *fakeBookSvc) FormatText(sessionID int) (string, error) { return "стакан", nil }

// fakeOrderSvc записывает поданные заявки
type fakeOrderSvc struct {
	submitted *orders.SubmitParams
}

func (f *fakeOrderSvc) Submit(params orders.SubmitParams) (*models.Order, error) {
	f.submitted = &params
	return &models.Order{ID: 9, SessionID: params.SessionID}, nil
}

func (f *fakeOrderSvc) Accept(orderID int) error { return nil }

func (f *fakeOrderSvc) Reject(orderID int) error { return nil }

// fakeGroupStore регистрирует upsert-ы и отвечает по Telegram ID
type fakeGroupStore struct {
	upserted     []*models.Group
	byTelegramID map[int64]*models.Group
	active       []*models.Group
}

func (f *fakeGroupStore) Upsert(group *models.Group) (*models.Group, error) {
	f.upserted = append(f.upserted, group)
	group.ID = len(f.upserted)
	return group, nil
}

func (f *fakeGroupStore) GetByID(id int) (*models.Group, error) { return nil, nil }

func (f *fakeGroupStore) GetByTelegramID(telegramID int64) (*models.Group, error) {
	return f.byTelegramID[telegramID], nil
}

func (f *fakeGroupStore) FindActive() ([]*models.Group, error) { return f.active, nil }

func (f *fakeGroupStore) FindActiveByTags(tags []string) ([]*models.Group, error) {
	return f.active, nil
}

// fakeUserStore регистрирует upsert-ы пользователей
type fakeUserStore struct {
	upserted []*models.User
}

func (f *fakeUserStore) Upsert(user *models.User) (*models.User, error) {
	f.upserted = append(f.upserted, user)
	return user, nil
}

func (f *fakeUserStore) GetByTelegramID(telegramID int64) (*models.User, error) { return nil, nil }

type botFixture struct {
	bot        *TelegramBot
	manager    *broadcast.Manager
	sender     *fakeBotSender
	monitor    *fakeMonitor
	sessionSvc *fakeSessionSvc
	orderSvc   *fakeOrderSvc
	groupStore *fakeGroupStore
	userStore  *fakeUserStore
}

func newBotFixture() *botFixture {
	cfg := &config.Config{}
	cfg.Telegram.AdminIDs = []int64{1}
	cfg.Broadcast.DefaultDuration = 90 * time.Minute
	cfg.Broadcast.DefaultSessionTTLMinutes = 60
	cfg.Broadcast.IncludeUnknownSide = true

	f := &botFixture{
		manager:    broadcast.NewManager(nil),
		sender:     &fakeBotSender{},
		monitor:    &fakeMonitor{},
		sessionSvc: &fakeSessionSvc{},
		orderSvc:   &fakeOrderSvc{},
		groupStore: &fakeGroupStore{byTelegramID: map[int64]*models.Group{}},
		userStore:  &fakeUserStore{},
	}
	f.bot = NewTelegramBot(cfg, f.sender, f.manager, f.monitor,
		f.sessionSvc, &fakeBookSvc{}, f.orderSvc, f.groupStore, f.userStore)
	return f
}

func groupUpdate(chatID int64, text string) TelegramUpdate {
	return TelegramUpdate{
		UpdateID: 1,
		Message: &TelegramMessage{
			Text: text,
			Date: time.Now().Unix(),
			Chat: TelegramChat{ID: chatID, Type: "supergroup", Title: "OTC One"},
			From: &TelegramUser{ID: 42, Username: "seller"},
		},
	}
}

func adminCommand(text string) TelegramUpdate {
	return TelegramUpdate{
		UpdateID: 2,
		Message: &TelegramMessage{
			Text: text,
			Date: time.Now().Unix(),
			Chat: TelegramChat{ID: 1, Type: "private"},
			From: &TelegramUser{ID: 1, Username: "admin"},
		},
	}
}

func TestGroupMessageRegistersGroupWithNonNullTags(t *testing.T) {
	f := newBotFixture()

	f.bot.ProcessUpdate(groupUpdate(-100500, "продам 1000 usdt"))

	if len(f.groupStore.upserted) != 1 {
		t.Fatalf("group must self-register on first message, got %d upserts", len(f.groupStore.upserted))
	}
	group := f.groupStore.upserted[0]
	if group.Tags == nil {
		t.Fatal("nil tags would bind SQL NULL into a NOT NULL column")
	}
	value, err := group.Tags.Value()
	if err != nil {
		t.Fatalf("Tags.Value: %v", err)
	}
	if value == nil {
		t.Fatal("driver value for empty tags must not be NULL")
	}

	if len(f.monitor.inbound) != 1 || f.monitor.inbound[0].ChatID != -100500 {
		t.Fatalf("group message must reach the monitor, got %+v", f.monitor.inbound)
	}
	if len(f.userStore.upserted) != 1 || f.userStore.upserted[0].TelegramID != 42 {
		t.Fatalf("sender must self-register, got %+v", f.userStore.upserted)
	}
}

func TestBroadcastUsesDefaultWindow(t *testing.T) {
	f := newBotFixture()
	f.sessionSvc.groups = []*models.Group{{ID: 1, TelegramID: -100500, Title: "OTC One"}}

	f.bot.ProcessUpdate(adminCommand("/broadcast buy USDT RUB"))

	if f.sessionSvc.createParams == nil {
		t.Fatalf("session must be created, replies: %v", f.sender.sent)
	}
	if f.sessionSvc.createParams.TTLMinutes != 90 {
		t.Fatalf("default window must come from BROADCAST_DEFAULT_DURATION, got %d min",
			f.sessionSvc.createParams.TTLMinutes)
	}

	snap, ok := f.manager.Snapshot()
	if !ok {
		t.Fatal("broadcast must start a live session")
	}
	if got := snap.EndsAt.Sub(snap.StartedAt); got != 90*time.Minute {
		t.Fatalf("live window must be 90 minutes, got %v", got)
	}
	if !f.manager.IsMonitoring(-100500) {
		t.Fatal("announced group must be monitored")
	}
}

func TestOrderAddResolvesGroupByChatID(t *testing.T) {
	f := newBotFixture()
	f.groupStore.byTelegramID[-100123] = &models.Group{ID: 7, TelegramID: -100123, Title: "OTC Two"}

	f.bot.ProcessUpdate(adminCommand("/order_add 5 buy 89.5 1000 USDT -100123"))

	if f.orderSvc.submitted == nil {
		t.Fatalf("order must be submitted, replies: %v", f.sender.sent)
	}
	if f.orderSvc.submitted.GroupID != 7 {
		t.Fatalf("telegram chat ID must resolve to the internal group ID, got %d",
			f.orderSvc.submitted.GroupID)
	}
	if !f.orderSvc.submitted.Price.Equal(decimal.RequireFromString("89.5")) {
		t.Fatalf("unexpected price %s", f.orderSvc.submitted.Price)
	}
}

func TestOrderAddWithoutGroupSubmitsUnbound(t *testing.T) {
	f := newBotFixture()

	f.bot.ProcessUpdate(adminCommand("/order_add 5 buy 89.5 1000 USDT"))

	if f.orderSvc.submitted == nil {
		t.Fatalf("order without a group must still be accepted, replies: %v", f.sender.sent)
	}
	if f.orderSvc.submitted.GroupID != 0 {
		t.Fatalf("omitted group must stay unbound, got %d", f.orderSvc.submitted.GroupID)
	}
}

func TestOrderAddRejectsUnknownGroup(t *testing.T) {
	f := newBotFixture()

	f.bot.ProcessUpdate(adminCommand("/order_add 5 buy 89.5 1000 USDT -100999"))

	if f.orderSvc.submitted != nil {
		t.Fatalf("unknown group must not reach Submit, got %+v", f.orderSvc.submitted)
	}
	if !strings.Contains(f.sender.lastSent(), "не найдена") {
		t.Fatalf("admin must be told the group is unknown, got %q", f.sender.lastSent())
	}
}

func TestNonAdminCommandRejected(t *testing.T) {
	f := newBotFixture()

	update := adminCommand("/groups")
	update.Message.From.ID = 2

	f.bot.ProcessUpdate(update)

	if !strings.Contains(f.sender.lastSent(), "администратор") {
		t.Fatalf("non-admin must be rejected, got %q", f.sender.lastSent())
	}
}
