package user

import (
	"fmt"
	"time"

	"github.com/gastoscl/rendiciones/internal/auth"
)

// User is an employee account. SupervisorID points at another user and forms
// a tree; assignments that would introduce a cycle are rejected before they
// are persisted (see Service.validateSupervisor).
type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash"`
	FirstName    string     `json:"first_name" gorm:"column:first_name;not null"`
	LastName     string     `json:"last_name" gorm:"column:last_name;not null"`
	Role         string     `json:"role" gorm:"default:user"`
	AreaID       *int64     `json:"area_id,omitempty" gorm:"column:area_id"`
	SupervisorID *int64     `json:"supervisor_id,omitempty" gorm:"column:supervisor_id"`
	IsActive     bool       `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty" gorm:"column:last_login"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

func (u *User) IsAdmin() bool {
	return auth.Role(u.Role) == auth.RoleAdmin
}

func (u *User) IsSupervisor() bool {
	return auth.Role(u.Role) == auth.RoleSupervisor
}
