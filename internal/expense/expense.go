package expense

import (
	"time"

	"github.com/gastoscl/rendiciones/internal/auth"
)

// Expense statuses. pending is the only non-terminal state. reimbursed is
// written by an external finance process, never by this service; it is a
// valid value on read and terminal like the others.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusReimbursed = "reimbursed"
)

// Approval actions.
const (
	ActionApproved = "approved"
	ActionRejected = "rejected"
)

// Expense is an employee claim against a client. ClientID is mandatory.
type Expense struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	UserID       int64     `json:"user_id" gorm:"column:user_id;not null"`
	ClientID     int64     `json:"client_id" gorm:"column:client_id;not null"`
	Amount       float64   `json:"amount" gorm:"not null"`
	ExpenseDate  time.Time `json:"expense_date" gorm:"column:expense_date;type:date"`
	Category     string    `json:"category" gorm:"not null"`
	Reason       string    `json:"reason" gorm:"not null"`
	ReceiptImage string    `json:"receipt_image" gorm:"column:receipt_image;not null"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Address      string    `json:"address,omitempty"`
	Status       string    `json:"status" gorm:"default:pending"`
	OCRData      *OCRData  `json:"ocr_data,omitempty" gorm:"column:ocr_data;serializer:json"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) IsPending() bool {
	return e.Status == StatusPending
}

// IsTerminal covers reimbursed too: a reimbursed expense is just as closed
// as an approved or rejected one.
func (e *Expense) IsTerminal() bool {
	return !e.IsPending()
}

// OCRData is the advisory payload extracted from the receipt image. It
// pre-fills forms and never feeds any guard or invariant.
type OCRData struct {
	SuggestedAmount *float64 `json:"suggested_amount,omitempty"`
	SuggestedDate   string   `json:"suggested_date,omitempty"`
	SuggestedRUTs   []string `json:"suggested_ruts,omitempty"`
	Confidence      string   `json:"confidence,omitempty"`
}

// Approval is the immutable audit record of one decision. The pending-status
// guard on the expense keeps the effective count at one per expense.
type Approval struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	ExpenseID  int64     `json:"expense_id" gorm:"column:expense_id;not null"`
	ApproverID int64     `json:"approver_id" gorm:"column:approver_id;not null"`
	Action     string    `json:"action" gorm:"not null"`
	Comments   string    `json:"comments,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Approval) TableName() string {
	return "approvals"
}

// CanDecide is the approval authorization rule. It is a pure function of the
// actor and the owner's current supervisor linkage and is re-evaluated on
// every attempt, never cached:
//
//  1. nobody decides their own expense, admins included
//  2. admins decide everything else
//  3. supervisors decide direct reports only
func CanDecide(actor *auth.Principal, ownerID int64, ownerSupervisorID *int64) bool {
	if actor.ID == ownerID {
		return false
	}
	if actor.Role == auth.RoleAdmin {
		return true
	}
	if actor.Role == auth.RoleSupervisor && ownerSupervisorID != nil && *ownerSupervisorID == actor.ID {
		return true
	}
	return false
}

// Scope is the visibility predicate derived from the principal. It is applied
// before any status or category filter; further filters only intersect it.
type Scope struct {
	All      bool
	OwnerIDs []int64
}

func (s Scope) Contains(ownerID int64) bool {
	if s.All {
		return true
	}
	for _, id := range s.OwnerIDs {
		if id == ownerID {
			return true
		}
	}
	return false
}

// ScopeFor computes the visible owner set: admins see everything,
// supervisors see themselves plus direct reports (one level, never
// transitive), users see only themselves.
func ScopeFor(principal *auth.Principal, directReports []int64) Scope {
	switch principal.Role {
	case auth.RoleAdmin:
		return Scope{All: true}
	case auth.RoleSupervisor:
		return Scope{OwnerIDs: append([]int64{principal.ID}, directReports...)}
	default:
		return Scope{OwnerIDs: []int64{principal.ID}}
	}
}
