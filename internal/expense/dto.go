package expense

import (
	"strings"
	"time"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/client"
)

const dateLayout = "2006-01-02"

// CreateExpenseDTO carries a new submission. Exactly one of ClientID or
// NewClient must be set; NewClient registers a pending client inline.
type CreateExpenseDTO struct {
	ClientID     *int64                    `json:"client_id,omitempty"`
	NewClient    *client.RegisterClientDTO `json:"new_client,omitempty"`
	Amount       float64                   `json:"amount"`
	ExpenseDate  string                    `json:"expense_date"`
	Category     string                    `json:"category"`
	Reason       string                    `json:"reason"`
	ReceiptImage string                    `json:"receipt_image"`
	Latitude     *float64                  `json:"latitude,omitempty"`
	Longitude    *float64                  `json:"longitude,omitempty"`
	Address      string                    `json:"address,omitempty"`
}

func (dto CreateExpenseDTO) Validate() error {
	if dto.ClientID == nil && dto.NewClient == nil {
		return internal.ErrClientRequired
	}
	if dto.ClientID != nil && dto.NewClient != nil {
		return internal.NewValidationError("provide either client_id or new_client, not both", internal.ErrCodeValidationFailed)
	}
	if dto.Amount <= 0 {
		return internal.NewValidationError("amount must be greater than zero", internal.ErrCodeInvalidAmount)
	}
	if _, err := dto.ParsedDate(); err != nil {
		return internal.NewValidationError("expense_date must be YYYY-MM-DD", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.Category) == "" {
		return internal.NewValidationError("category is required", internal.ErrCodeInvalidCategory)
	}
	if strings.TrimSpace(dto.Reason) == "" {
		return internal.NewValidationError("reason is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.ReceiptImage) == "" {
		return internal.NewValidationError("receipt_image is required", internal.ErrCodeValidationFailed)
	}
	return validateGeolocation(dto.Latitude, dto.Longitude)
}

func (dto CreateExpenseDTO) ParsedDate() (time.Time, error) {
	return time.Parse(dateLayout, dto.ExpenseDate)
}

// UpdateExpenseDTO edits a pending expense. Ownership is fixed at submission;
// the client binding may move to another non-rejected client while pending.
type UpdateExpenseDTO struct {
	ClientID     *int64   `json:"client_id,omitempty"`
	Amount       *float64 `json:"amount,omitempty"`
	ExpenseDate  *string  `json:"expense_date,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Reason       *string  `json:"reason,omitempty"`
	ReceiptImage *string  `json:"receipt_image,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Address      *string  `json:"address,omitempty"`
}

func (dto UpdateExpenseDTO) Validate() error {
	if dto.Amount != nil && *dto.Amount <= 0 {
		return internal.NewValidationError("amount must be greater than zero", internal.ErrCodeInvalidAmount)
	}
	if dto.ExpenseDate != nil {
		if _, err := time.Parse(dateLayout, *dto.ExpenseDate); err != nil {
			return internal.NewValidationError("expense_date must be YYYY-MM-DD", internal.ErrCodeValidationFailed)
		}
	}
	if dto.Category != nil && strings.TrimSpace(*dto.Category) == "" {
		return internal.NewValidationError("category cannot be empty", internal.ErrCodeInvalidCategory)
	}
	if dto.Reason != nil && strings.TrimSpace(*dto.Reason) == "" {
		return internal.NewValidationError("reason cannot be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Latitude != nil || dto.Longitude != nil {
		return validateGeolocation(dto.Latitude, dto.Longitude)
	}
	return nil
}

// DecideDTO is an approval decision. Rejections must say why.
type DecideDTO struct {
	Action   string `json:"action"`
	Comments string `json:"comments,omitempty"`
}

func (dto DecideDTO) Validate() error {
	switch dto.Action {
	case ActionApproved, ActionRejected:
	default:
		return internal.NewValidationError("action must be approved or rejected", internal.ErrCodeValidationFailed)
	}
	if dto.Action == ActionRejected && strings.TrimSpace(dto.Comments) == "" {
		return internal.NewValidationError("comments are required when rejecting", internal.ErrCodeCommentsRequired)
	}
	return nil
}

// Geolocation is both-or-neither: a lone coordinate is meaningless.
func validateGeolocation(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return internal.NewValidationError("latitude and longitude must be provided together", internal.ErrCodeInvalidLocation)
	}
	if lat == nil {
		return nil
	}
	if *lat < -90 || *lat > 90 {
		return internal.NewValidationError("latitude out of range", internal.ErrCodeInvalidLocation)
	}
	if *lng < -180 || *lng > 180 {
		return internal.NewValidationError("longitude out of range", internal.ErrCodeInvalidLocation)
	}
	return nil
}

// Filter narrows a listing inside the caller's visibility scope.
type Filter struct {
	Status   string
	Category string
	UserID   *int64
	Limit    int
	Offset   int
}

func (f Filter) Validate() error {
	switch f.Status {
	case "", StatusPending, StatusApproved, StatusRejected, StatusReimbursed:
	default:
		return internal.NewValidationError("unknown status filter", internal.ErrCodeValidationFailed)
	}
	return nil
}

// Stats aggregates the expenses visible to the caller.
type Stats struct {
	Total          int64   `json:"total"`
	Pending        int64   `json:"pending"`
	Approved       int64   `json:"approved"`
	Rejected       int64   `json:"rejected"`
	Reimbursed     int64   `json:"reimbursed"`
	TotalAmount    float64 `json:"total_amount"`
	ApprovedAmount float64 `json:"approved_amount"`
}

// CategoryStat aggregates one category's share of the visible expenses.
type CategoryStat struct {
	Category  string  `json:"category"`
	Count     int64   `json:"count"`
	Total     float64 `json:"total"`
	Average   float64 `json:"average"`
	MinAmount float64 `json:"min_amount"`
	MaxAmount float64 `json:"max_amount"`
}

// PeriodBucket is one month's share of a period breakdown.
type PeriodBucket struct {
	Month int     `json:"month"`
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

type PeriodStats struct {
	Year   int            `json:"year"`
	Months []PeriodBucket `json:"months"`
	Count  int64          `json:"count"`
	Total  float64        `json:"total"`
}

// AreaStat rolls expenses up to the owner's area. BudgetUsage is the percent
// of the area's monthly budget consumed, zero when no budget is set.
type AreaStat struct {
	AreaID        int64   `json:"area_id"`
	AreaName      string  `json:"area_name"`
	ExpenseCount  int64   `json:"expense_count"`
	TotalAmount   float64 `json:"total_amount"`
	Pending       int64   `json:"pending"`
	Approved      int64   `json:"approved"`
	BudgetMonthly float64 `json:"budget_monthly"`
	BudgetUsage   float64 `json:"budget_usage"`
}
