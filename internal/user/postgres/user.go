package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	err := r.db.Create(u).Error
	if err != nil && isUniqueViolation(err) {
		return internal.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetDirectReports(supervisorID int64) ([]*user.User, error) {
	var users []*user.User
	err := r.db.Where("supervisor_id = ?", supervisorID).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetTeam(supervisorID int64) ([]*user.User, error) {
	var users []*user.User
	err := r.db.Where("id = ? OR supervisor_id = ?", supervisorID, supervisorID).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(u *user.User) error {
	err := r.db.Save(u).Error
	if err != nil && isUniqueViolation(err) {
		return internal.ErrDuplicateEmail
	}
	return err
}

// isUniqueViolation matches both the postgres and sqlite unique constraint
// messages, since tests run against sqlite.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
