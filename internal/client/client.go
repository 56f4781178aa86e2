package client

import (
	"time"
)

// Client statuses. Both active and rejected are terminal: a client is
// transitioned at most once, by an admin.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
)

// Client is a company that expenses are billed against. IsActive is a gate
// distinct from Status: historical snapshots keep the value they had when
// written, so it is stored rather than derived.
type Client struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	RUT                string    `json:"rut" gorm:"uniqueIndex;not null"`
	Name               string    `json:"name" gorm:"not null"`
	ContactEmail       string    `json:"contact_email,omitempty" gorm:"column:contact_email"`
	Status             string    `json:"status" gorm:"default:pending"`
	IsActive           bool      `json:"is_active" gorm:"column:is_active;default:false"`
	CreatedBy          int64     `json:"created_by" gorm:"column:created_by"`
	CreatedWithExpense bool      `json:"created_with_expense" gorm:"column:created_with_expense;default:false"`
	CreatedAt          time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Client) TableName() string {
	return "clients"
}

func (c *Client) IsPending() bool {
	return c.Status == StatusPending
}

func (c *Client) IsRejected() bool {
	return c.Status == StatusRejected
}

// ApproveResult reports the outcome of approving a pending client. The
// pending expense count is informational: approval never transitions
// dependent expenses, it only makes them eligible for the normal flow.
type ApproveResult struct {
	Client          *Client `json:"client"`
	PendingExpenses int64   `json:"pending_expenses"`
}

// RejectResult reports the outcome of rejecting a pending client, including
// how many dependent pending expenses were auto-rejected in the same
// transaction.
type RejectResult struct {
	Client           *Client `json:"client"`
	RejectedExpenses int64   `json:"rejected_expenses"`
}
