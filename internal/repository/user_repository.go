package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new account. Emails are stored lower-cased.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return model.ErrEmailTaken
	}
	if err := db.Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

// BindChat attaches the signed-in session of a user to a chat. A chat holds at
// most one session, so any other user bound to it is detached first.
func (r *UserRepository) BindChat(ctx context.Context, userID string, chatID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("telegram_chat_id = ? AND id <> ?", chatID, userID).
			Update("telegram_chat_id", 0).Error; err != nil {
			return fmt.Errorf("unbind chat: %w", err)
		}
		res := tx.Model(&model.User{}).Where("id = ?", userID).Update("telegram_chat_id", chatID)
		if res.Error != nil {
			return fmt.Errorf("bind chat: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return model.ErrUserNotFound
		}
		return nil
	})
}

// UnbindChat clears the session bound to a chat, if any.
func (r *UserRepository) UnbindChat(ctx context.Context, chatID int64) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("telegram_chat_id = ?", chatID).
		Update("telegram_chat_id", 0).Error; err != nil {
		return fmt.Errorf("unbind chat: %w", err)
	}
	return nil
}

// ListBound returns every user with an active chat session.
func (r *UserRepository) ListBound(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("telegram_chat_id <> 0").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list bound users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, model.ErrUserNotFound
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}
