// /internal/infrastructure/persistence/postgres/repository/group/repository.go
package group_repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
	"p2p-offer-radar-bot/pkg/logger"
)

type groupRepoImpl struct {
	db *sqlx.DB
}

// NewGroupRepository создаёт реализацию GroupRepository
func NewGroupRepository(db *sqlx.DB) GroupRepository {
	return &groupRepoImpl{db: db}
}

// Upsert добавляет группу или обновляет название существующей
func (r *groupRepoImpl) Upsert(group *models.Group) (*models.Group, error) {
	query := `
		INSERT INTO groups (telegram_id, title, status, tags, created_at, updated_at)
		VALUES (:telegram_id, :title, :status, :tags, NOW(), NOW())
		ON CONFLICT (telegram_id) DO UPDATE
		SET title = EXCLUDED.title, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	rows, err := r.db.NamedQuery(query, group)
	if err != nil {
		return nil, fmt.Errorf("GroupRepo.Upsert: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, fmt.Errorf("GroupRepo.Upsert: scan: %w", err)
		}
	}

	logger.Debug("➕ Группа сохранена: %s (tg=%d)", group.Title, group.TelegramID)
	return group, nil
}

// GetByID возвращает группу по внутреннему ID, nil если не найдена
func (r *groupRepoImpl) GetByID(id int) (*models.Group, error) {
	query := `
		SELECT id, telegram_id, title, status, tags, created_at, updated_at
		FROM groups
		WHERE id = $1
	`
	var group models.Group
	if err := r.db.Get(&group, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GroupRepo.GetByID: %w", err)
	}
	return &group, nil
}

// GetByTelegramID возвращает группу по Telegram ID, nil если не найдена
func (r *groupRepoImpl) GetByTelegramID(telegramID int64) (*models.Group, error) {
	query := `
		SELECT id, telegram_id, title, status, tags, created_at, updated_at
		FROM groups
		WHERE telegram_id = $1
	`
	var group models.Group
	if err := r.db.Get(&group, query, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GroupRepo.GetByTelegramID: %w", err)
	}
	return &group, nil
}

// FindActive возвращает все активные группы
func (r *groupRepoImpl) FindActive() ([]*models.Group, error) {
	query := `
		SELECT id, telegram_id, title, status, tags, created_at, updated_at
		FROM groups
		WHERE status = $1
		ORDER BY title
	`
	var groups []*models.Group
	if err := r.db.Select(&groups, query, models.GroupActive); err != nil {
		return nil, fmt.Errorf("GroupRepo.FindActive: %w", err)
	}
	return groups, nil
}

// FindActiveByTags возвращает активные группы с любым из тегов
func (r *groupRepoImpl) FindActiveByTags(tags []string) ([]*models.Group, error) {
	if len(tags) == 0 {
		return r.FindActive()
	}

	query := `
		SELECT id, telegram_id, title, status, tags, created_at, updated_at
		FROM groups
		WHERE status = $1 AND tags && $2
		ORDER BY title
	`
	var groups []*models.Group
	if err := r.db.Select(&groups, query, models.GroupActive, pq.Array(tags)); err != nil {
		return nil, fmt.Errorf("GroupRepo.FindActiveByTags: %w", err)
	}
	return groups, nil
}
