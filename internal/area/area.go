package area

import (
	"strings"
	"time"

	"github.com/gastoscl/rendiciones/internal"
)

// Area groups users under a monthly budget.
type Area struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	BudgetMonthly float64   `json:"budget_monthly" gorm:"column:budget_monthly"`
	IsActive      bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Area) TableName() string {
	return "areas"
}

type CreateAreaDTO struct {
	Name          string  `json:"name"`
	BudgetMonthly float64 `json:"budget_monthly"`
}

func (dto CreateAreaDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if dto.BudgetMonthly < 0 {
		return internal.NewValidationError("budget_monthly cannot be negative", internal.ErrCodeInvalidAmount)
	}
	return nil
}

type UpdateAreaDTO struct {
	Name          *string  `json:"name,omitempty"`
	BudgetMonthly *float64 `json:"budget_monthly,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

func (dto UpdateAreaDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return internal.NewValidationError("name cannot be empty", internal.ErrCodeValidationFailed)
	}
	if dto.BudgetMonthly != nil && *dto.BudgetMonthly < 0 {
		return internal.NewValidationError("budget_monthly cannot be negative", internal.ErrCodeInvalidAmount)
	}
	return nil
}
