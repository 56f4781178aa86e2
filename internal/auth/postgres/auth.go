package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/auth"
	"github.com/gastoscl/rendiciones/internal/user"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.RepositoryAPI {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentialsByEmail(email string) (*auth.Credentials, error) {
	var u user.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, err
	}
	return &auth.Credentials{
		UserID:       u.ID,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}, nil
}

func (r *AuthRepository) GetPrincipal(userID int64) (*auth.Principal, error) {
	var u user.User
	err := r.db.Where("id = ?", userID).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}
	return &auth.Principal{
		ID:           u.ID,
		Email:        u.Email,
		Role:         auth.Role(u.Role),
		SupervisorID: u.SupervisorID,
	}, nil
}

func (r *AuthRepository) TouchLastLogin(userID int64) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", userID).
		Update("last_login", time.Now()).Error
}
