package broadcast

import (
	"testing"
	"time"

	"p2p-offer-radar-bot/internal/core/domain/offers"
)

// memoryStore хранилище снапшотов в памяти для тестов
type memoryStore struct {
	snapshot *Snapshot
	saves    int
}

func (s *memoryStore) Save(snapshot Snapshot) error {
	s.snapshot = &snapshot
	s.saves++
	return nil
}

func (s *memoryStore) Load() (*Snapshot, error) { return s.snapshot, nil }

func (s *memoryStore) Delete() error {
	s.snapshot = nil
	return nil
}

func startParams(duration time.Duration, chatIDs ...int64) StartParams {
	return StartParams{
		OwnerID:      7,
		Duration:     duration,
		ChatIDs:      chatIDs,
		Mode:         ModeDirectional,
		Direction:    offers.SideBuy,
		CurrencyFrom: "USDT",
		CurrencyTo:   "RUB",
	}
}

func testOffer(user string) offers.Offer {
	price := 90.0
	return offers.Offer{Side: offers.SideSell, Price: &price, User: user}
}

func TestManagerMonitorsOnlyTargetChats(t *testing.T) {
	m := NewManager(nil)
	m.now = func() time.Time { return time.Unix(0, 0) }

	m.Start(startParams(time.Hour, 100, 200))

	if !m.IsMonitoring(100) || !m.IsMonitoring(200) {
		t.Fatal("target chats must be monitored")
	}
	if m.IsMonitoring(300) {
		t.Fatal("foreign chat must not be monitored")
	}
	if !m.IsMonitoring(0) {
		t.Fatal("chatID 0 must report session liveness")
	}
}

func TestManagerLazyExpiry(t *testing.T) {
	m := NewManager(nil)
	now := time.Unix(0, 0)
	m.now = func() time.Time { return now }

	m.Start(startParams(time.Hour, 100))

	now = now.Add(59 * time.Minute)
	if !m.IsMonitoring(100) {
		t.Fatal("session must be alive before the deadline")
	}

	now = now.Add(2 * time.Minute)
	if m.IsMonitoring(100) {
		t.Fatal("session must expire after the deadline")
	}
	if _, ok := m.Snapshot(); ok {
		t.Fatal("expired session must be gone after the first check")
	}
}

func TestManagerAppendAfterExpiryIsNoop(t *testing.T) {
	m := NewManager(nil)
	now := time.Unix(0, 0)
	m.now = func() time.Time { return now }

	m.Start(startParams(time.Minute, 100))

	if !m.AppendOffer(testOffer("early")) {
		t.Fatal("append within the window must succeed")
	}

	now = now.Add(2 * time.Minute)
	if m.AppendOffer(testOffer("late")) {
		t.Fatal("append after expiry must be a no-op")
	}
}

func TestManagerAppendWithoutSession(t *testing.T) {
	m := NewManager(nil)
	if m.AppendOffer(testOffer("orphan")) {
		t.Fatal("append without an active session must be a no-op")
	}
}

func TestManagerRestartReplacesSession(t *testing.T) {
	m := NewManager(nil)
	m.now = func() time.Time { return time.Unix(0, 0) }

	m.Start(startParams(time.Hour, 100))
	m.AppendOffer(testOffer("first"))

	m.Start(startParams(time.Hour, 200))

	if m.IsMonitoring(100) {
		t.Fatal("old chat must not survive the restart")
	}
	snap, ok := m.Snapshot()
	if !ok {
		t.Fatal("new session must be active")
	}
	if len(snap.Offers) != 0 {
		t.Fatalf("new session must start with an empty log, got %d", len(snap.Offers))
	}
}

func TestManagerAppendPreservesOrder(t *testing.T) {
	m := NewManager(nil)
	m.now = func() time.Time { return time.Unix(0, 0) }

	m.Start(startParams(time.Hour, 100))
	m.AppendOffer(testOffer("a"))
	m.AppendOffer(testOffer("b"))
	m.AppendOffer(testOffer("c"))

	snap, _ := m.Snapshot()
	if len(snap.Offers) != 3 {
		t.Fatalf("expected 3 offers, got %d", len(snap.Offers))
	}
	for i, want := range []string{"a", "b", "c"} {
		if snap.Offers[i].User != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, snap.Offers[i].User)
		}
	}
}

func TestManagerRegisterOutput(t *testing.T) {
	m := NewManager(nil)
	m.now = func() time.Time { return time.Unix(0, 0) }

	m.Start(startParams(time.Hour, 100))
	m.RegisterOutput(42, 1001)

	snap, _ := m.Snapshot()
	if snap.Output.ChatID != 42 || snap.Output.MessageID != 1001 {
		t.Fatalf("unexpected output binding: %+v", snap.Output)
	}

	// Повторная привязка перезаписывает предыдущую
	m.RegisterOutput(42, 1002)
	snap, _ = m.Snapshot()
	if snap.Output.MessageID != 1002 {
		t.Fatalf("rebind must overwrite, got %+v", snap.Output)
	}
}

func TestManagerStop(t *testing.T) {
	store := &memoryStore{}
	m := NewManager(store)
	m.now = func() time.Time { return time.Unix(0, 0) }

	m.Start(startParams(time.Hour, 100))
	m.Stop()

	if m.IsMonitoring(0) {
		t.Fatal("session must be gone after Stop")
	}
	if store.snapshot != nil {
		t.Fatal("stored snapshot must be deleted after Stop")
	}
}

func TestManagerRestoresLiveSession(t *testing.T) {
	// Восстановление при создании менеджера идёт по реальным часам,
	// поэтому дедлайн сессии должен лежать в будущем
	store := &memoryStore{}
	first := NewManager(store)
	first.Start(startParams(time.Hour, 100))
	first.AppendOffer(testOffer("persisted"))

	second := NewManager(store)

	if !second.IsMonitoring(100) {
		t.Fatal("live session must survive a restart")
	}
	snap, _ := second.Snapshot()
	if len(snap.Offers) != 1 || snap.Offers[0].User != "persisted" {
		t.Fatalf("offer log must survive a restart, got %+v", snap.Offers)
	}
}

func TestManagerSkipsExpiredSnapshotOnRestore(t *testing.T) {
	store := &memoryStore{
		snapshot: &Snapshot{
			ID:      "stale",
			ChatIDs: []int64{100},
			EndsAt:  time.Now().Add(-time.Minute),
		},
	}

	m := NewManager(store)

	if m.IsMonitoring(0) {
		t.Fatal("expired snapshot must not be restored")
	}
	if store.snapshot != nil {
		t.Fatal("expired snapshot must be deleted during restore")
	}
}

func TestSnapshotRemaining(t *testing.T) {
	snap := Snapshot{EndsAt: time.Unix(600, 0)}

	if got := snap.Remaining(time.Unix(0, 0)); got != 10*time.Minute {
		t.Fatalf("expected 10m remaining, got %v", got)
	}
	if got := snap.Remaining(time.Unix(600, 0)); got != 0 {
		t.Fatalf("expected 0 at the deadline, got %v", got)
	}
	if got := snap.Remaining(time.Unix(700, 0)); got != 0 {
		t.Fatalf("expected 0 past the deadline, got %v", got)
	}
}
