// /internal/infrastructure/persistence/postgres/repository/users/repository.go
package users_repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/models"
)

type userRepoImpl struct {
	db *sqlx.DB
}

// NewUserRepository создаёт реализацию UserRepository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepoImpl{db: db}
}

// Upsert добавляет пользователя или обновляет имя существующего
func (r *userRepoImpl) Upsert(user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, full_name, is_admin, created_at)
		VALUES (:telegram_id, :username, :full_name, :is_admin, NOW())
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username, full_name = EXCLUDED.full_name
		RETURNING id, created_at
	`
	rows, err := r.db.NamedQuery(query, user)
	if err != nil {
		return nil, fmt.Errorf("UserRepo.Upsert: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&user.ID, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("UserRepo.Upsert: scan: %w", err)
		}
	}
	return user, nil
}

// GetByTelegramID возвращает пользователя по Telegram ID, nil если не найден
func (r *userRepoImpl) GetByTelegramID(telegramID int64) (*models.User, error) {
	query := `
		SELECT id, telegram_id, username, full_name, is_admin, created_at
		FROM users
		WHERE telegram_id = $1
	`
	var user models.User
	if err := r.db.Get(&user, query, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("UserRepo.GetByTelegramID: %w", err)
	}
	return &user, nil
}
