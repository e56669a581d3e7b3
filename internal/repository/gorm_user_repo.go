package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fittogether/server/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.SignUpType == "" {
		user.SignUpType = domain.SignUpTypeEmail
	}

	model := domain.UserToModel(user)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return r.handleError(result.Error)
	}

	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByNickname retrieves a user by nickname.
func (r *GormUserRepository) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	return r.first(ctx, "nickname = ?", nickname)
}

// GetByEmail retrieves a user by email.
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByProviderID retrieves a user created through an OAuth provider.
func (r *GormUserRepository) GetByProviderID(ctx context.Context, signUpType domain.SignUpType, providerID string) (*domain.User, error) {
	if providerID == "" {
		return nil, ErrUserNotFound
	}
	return r.first(ctx, "sign_up_type = ? AND provider_id = ?", string(signUpType), providerID)
}

// ExistsByNickname reports whether the nickname is taken.
func (r *GormUserRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return r.exists(ctx, "nickname = ?", nickname)
}

// ExistsByEmail reports whether the email is taken.
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *GormUserRepository) first(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).Where(query, args...).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

func (r *GormUserRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.UserModel{}).Where(query, args...).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// handleError converts database-specific errors to domain errors.
func (r *GormUserRepository) handleError(err error) error {
	errStr := err.Error()

	// PostgreSQL / SQLite unique constraint violation
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "UNIQUE constraint") {
		if strings.Contains(errStr, "email") {
			return ErrEmailExists
		}
		if strings.Contains(errStr, "nickname") {
			return ErrNicknameExists
		}
	}

	// MySQL unique constraint violation
	if strings.Contains(errStr, "Duplicate entry") {
		if strings.Contains(errStr, "email") {
			return ErrEmailExists
		}
		if strings.Contains(errStr, "nickname") {
			return ErrNicknameExists
		}
	}

	return err
}
