package client

import (
	"log/slog"
	"time"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/auth"
)

type RepositoryAPI interface {
	Create(c *Client) error
	GetByID(id int64) (*Client, error)
	GetByRUT(rut string) (*Client, error)
	GetActive() ([]*Client, error)
	GetPending() ([]*Client, error)
	// Approve flips a pending client to active and returns the number of
	// pending expenses now eligible for review. Must fail with a state
	// conflict when the client already left pending.
	Approve(clientID int64) (*Client, int64, error)
	// Reject flips a pending client to rejected and, in the same
	// transaction, rejects every pending expense referencing it. Returns
	// the count of auto-rejected expenses.
	Reject(clientID int64) (*Client, int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Register creates a pending, inactive client. Any authenticated user may
// request one; it becomes usable only after admin approval.
func (s *Service) Register(principal *auth.Principal, dto RegisterClientDTO) (*Client, error) {
	return s.register(principal, dto, false)
}

// RegisterInline creates a pending client as a side effect of submitting an
// expense, flagged so the review queue can tell the two flows apart.
func (s *Service) RegisterInline(principal *auth.Principal, dto RegisterClientDTO) (*Client, error) {
	return s.register(principal, dto, true)
}

func (s *Service) register(principal *auth.Principal, dto RegisterClientDTO, withExpense bool) (*Client, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rut := FormatRUT(dto.RUT)
	if existing, err := s.repo.GetByRUT(rut); err == nil && existing != nil {
		return nil, internal.ErrDuplicateRUT
	}

	c := &Client{
		RUT:                rut,
		Name:               dto.Name,
		ContactEmail:       dto.ContactEmail,
		Status:             StatusPending,
		IsActive:           false,
		CreatedBy:          principal.ID,
		CreatedWithExpense: withExpense,
		CreatedAt:          time.Now(),
	}

	if err := s.repo.Create(c); err != nil {
		s.logger.Error("failed to register client", "error", err, "rut", rut)
		return nil, err
	}

	s.logger.Info("client registered",
		"client_id", c.ID,
		"rut", rut,
		"created_by", principal.ID,
		"with_expense", withExpense)
	return c, nil
}

func (s *Service) GetByID(id int64) (*Client, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListActive() ([]*Client, error) {
	return s.repo.GetActive()
}

func (s *Service) ListPending(principal *auth.Principal) ([]*Client, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrRoleDenied
	}
	return s.repo.GetPending()
}

// Approve activates a pending client. Dependent pending expenses are left
// untouched; their count is surfaced so the reviewer knows work is waiting.
func (s *Service) Approve(principal *auth.Principal, clientID int64) (*ApproveResult, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrRoleDenied
	}

	c, pending, err := s.repo.Approve(clientID)
	if err != nil {
		s.logger.Warn("client approval failed", "error", err, "client_id", clientID, "admin_id", principal.ID)
		return nil, err
	}

	s.logger.Info("client approved",
		"client_id", clientID,
		"admin_id", principal.ID,
		"pending_expenses", pending)

	return &ApproveResult{Client: c, PendingExpenses: pending}, nil
}

// Reject terminally rejects a pending client and cascades the rejection to
// its pending expenses atomically. A rejected client can never become valid,
// so leaving those expenses pending would strand them.
func (s *Service) Reject(principal *auth.Principal, clientID int64) (*RejectResult, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrRoleDenied
	}

	c, rejected, err := s.repo.Reject(clientID)
	if err != nil {
		s.logger.Warn("client rejection failed", "error", err, "client_id", clientID, "admin_id", principal.ID)
		return nil, err
	}

	s.logger.Info("client rejected",
		"client_id", clientID,
		"admin_id", principal.ID,
		"rejected_expenses", rejected)

	return &RejectResult{Client: c, RejectedExpenses: rejected}, nil
}
