package trading_session

import (
	"testing"

	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
)

// fakeSessionRepo записывает сохраняемые сессии
type fakeSessionRepo struct {
	created *models.TradingSession
}

func (f *fakeSessionRepo) Create(session *models.TradingSession) (*models.TradingSession, error) {
	f.created = session
	session.ID = 1
	return session, nil
}

func (f *fakeSessionRepo) GetByID(id int) (*models.TradingSession, error) { return nil, nil }

func (f *fakeSessionRepo) FindActive() ([]*models.TradingSession, error) { return nil, nil }

func (f *fakeSessionRepo) UpdateStatus(id int, status models.SessionStatus) error { return nil }

func (f *fakeSessionRepo) ExpireOverdue() (int64, error) { return 0, nil }

type fakeGroupRepo struct{}

func (f *fakeGroupRepo) Upsert(group *models.Group) (*models.Group, error) { return group, nil }

func (f *fakeGroupRepo) GetByID(id int) (*models.Group, error) { return nil, nil }

func (f *fakeGroupRepo) GetByTelegramID(telegramID int64) (*models.Group, error) { return nil, nil }

func (f *fakeGroupRepo) FindActive() ([]*models.Group, error) { return nil, nil }

func (f *fakeGroupRepo) FindActiveByTags(tags []string) ([]*models.Group, error) { return nil, nil }

func TestCreateDefaultsTargetTagsToEmptyArray(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := NewService(repo, &fakeGroupRepo{})

	_, err := svc.Create(CreateParams{
		Direction:    models.DirectionBuy,
		CurrencyFrom: "USDT",
		CurrencyTo:   "RUB",
		TTLMinutes:   60,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if repo.created.TargetTags == nil {
		t.Fatal("nil target tags would bind SQL NULL into a NOT NULL column")
	}
	value, err := repo.created.TargetTags.Value()
	if err != nil {
		t.Fatalf("TargetTags.Value: %v", err)
	}
	if value == nil {
		t.Fatal("driver value for empty target tags must not be NULL")
	}
}

func TestCreatePreservesTargetTags(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := NewService(repo, &fakeGroupRepo{})

	_, err := svc.Create(CreateParams{
		Direction:    models.DirectionSell,
		CurrencyFrom: "USDT",
		CurrencyTo:   "RUB",
		TTLMinutes:   30,
		TargetTags:   []string{"otc", "rub"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(repo.created.TargetTags) != 2 || repo.created.TargetTags[0] != "otc" {
		t.Fatalf("target tags must pass through unchanged, got %v", repo.created.TargetTags)
	}
}

func TestCreateRejectsBadParams(t *testing.T) {
	svc := NewService(&fakeSessionRepo{}, &fakeGroupRepo{})

	if _, err := svc.Create(CreateParams{Direction: "hold", TTLMinutes: 60}); err == nil {
		t.Fatal("unknown direction must be rejected")
	}
	if _, err := svc.Create(CreateParams{Direction: models.DirectionBuy, TTLMinutes: 0}); err == nil {
		t.Fatal("non-positive TTL must be rejected")
	}
}
