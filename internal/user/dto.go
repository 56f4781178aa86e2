package user

import (
	"strings"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/auth"
)

type CreateUserDTO struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	AreaID       *int64 `json:"area_id,omitempty"`
	SupervisorID *int64 `json:"supervisor_id,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	if strings.TrimSpace(dto.Email) == "" || !strings.Contains(dto.Email, "@") {
		return internal.NewValidationError("a valid email is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.FirstName) == "" {
		return internal.NewValidationError("first_name is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.LastName) == "" {
		return internal.NewValidationError("last_name is required", internal.ErrCodeValidationFailed)
	}
	if !auth.Role(dto.Role).Valid() {
		return internal.NewValidationError("role must be one of user, supervisor, admin", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateUserDTO uses pointers so absent fields are left untouched.
type UpdateUserDTO struct {
	Email        *string `json:"email,omitempty"`
	Password     *string `json:"password,omitempty"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Role         *string `json:"role,omitempty"`
	AreaID       *int64  `json:"area_id,omitempty"`
	SupervisorID *int64  `json:"supervisor_id,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Email != nil && (strings.TrimSpace(*dto.Email) == "" || !strings.Contains(*dto.Email, "@")) {
		return internal.NewValidationError("a valid email is required", internal.ErrCodeValidationFailed)
	}
	if dto.Password != nil && len(*dto.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	if dto.Role != nil && !auth.Role(*dto.Role).Valid() {
		return internal.NewValidationError("role must be one of user, supervisor, admin", internal.ErrCodeValidationFailed)
	}
	return nil
}
