package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/auth"
	"github.com/gastoscl/rendiciones/internal/client"
)

type RepositoryAPI interface {
	Create(e *Expense) error
	GetByID(id int64) (*Expense, error)
	List(scope Scope, filter Filter) ([]*Expense, error)
	ListPending(scope Scope) ([]*Expense, error)
	Update(e *Expense) error
	Delete(id int64) error
	// Decide moves a pending expense to a terminal status and records the
	// approval in one transaction. Must fail with a state conflict when the
	// expense already left pending.
	Decide(expenseID int64, toStatus string, approval *Approval) error
	Stats(scope Scope) (*Stats, error)
	StatsByCategory(scope Scope) ([]*CategoryStat, error)
	ListForPeriod(scope Scope, from, to time.Time) ([]*Expense, error)
	StatsByArea() ([]*AreaStat, error)
	ApprovalsByExpense(expenseID int64) ([]*Approval, error)
	ApprovalsByApprover(approverID int64) ([]*Approval, error)
}

// DirectoryAPI exposes the supervisor linkage both the visibility scope and
// the approval rule depend on. Queried fresh on every call so reassignments
// take effect immediately.
type DirectoryAPI interface {
	DirectReportIDs(supervisorID int64) ([]int64, error)
	SupervisorOf(userID int64) (*int64, error)
}

type ClientsAPI interface {
	GetByID(id int64) (*client.Client, error)
	RegisterInline(principal *auth.Principal, dto client.RegisterClientDTO) (*client.Client, error)
}

type CategoriesAPI interface {
	// CeilingFor returns the per-expense maximum for a category, zero when
	// the category has no ceiling.
	CeilingFor(name string) (float64, error)
}

// ScannerAPI extracts advisory hints from a stored receipt. Implementations
// may be slow or flaky; callers must treat failures as absence of hints.
type ScannerAPI interface {
	Scan(ctx context.Context, receiptRef string) (*OCRData, error)
}

type Service struct {
	repo       RepositoryAPI
	directory  DirectoryAPI
	clients    ClientsAPI
	categories CategoriesAPI
	scanner    ScannerAPI
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, directory DirectoryAPI, clients ClientsAPI, categories CategoriesAPI, scanner ScannerAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		directory:  directory,
		clients:    clients,
		categories: categories,
		scanner:    scanner,
		logger:     logger,
	}
}

// Submit creates a pending expense for the principal. The client reference
// must resolve to a non-rejected client; alternatively a new pending client
// is registered inline and bound to the expense.
func (s *Service) Submit(ctx context.Context, principal *auth.Principal, dto CreateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	clientID, err := s.resolveClient(principal, dto)
	if err != nil {
		return nil, err
	}

	ceiling, err := s.categories.CeilingFor(dto.Category)
	if err != nil {
		return nil, err
	}
	if ceiling > 0 && dto.Amount > ceiling {
		return nil, internal.NewValidationError("amount exceeds the category maximum", internal.ErrCodeAmountTooHigh).
			WithDetails(map[string]interface{}{"max_amount": ceiling})
	}

	date, _ := dto.ParsedDate()
	e := &Expense{
		UserID:       principal.ID,
		ClientID:     clientID,
		Amount:       dto.Amount,
		ExpenseDate:  date,
		Category:     dto.Category,
		Reason:       dto.Reason,
		ReceiptImage: dto.ReceiptImage,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		Address:      dto.Address,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// Hints are best effort. A scanner failure never blocks submission.
	if s.scanner != nil {
		if hints, err := s.scanner.Scan(ctx, dto.ReceiptImage); err != nil {
			s.logger.Warn("receipt scan failed, continuing without hints", "error", err, "receipt", dto.ReceiptImage)
		} else {
			e.OCRData = hints
		}
	}

	if err := s.repo.Create(e); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", principal.ID)
		return nil, err
	}

	s.logger.Info("expense submitted",
		"expense_id", e.ID,
		"user_id", principal.ID,
		"client_id", clientID,
		"amount", e.Amount,
		"category", e.Category)
	return e, nil
}

func (s *Service) resolveClient(principal *auth.Principal, dto CreateExpenseDTO) (int64, error) {
	if dto.NewClient != nil {
		c, err := s.clients.RegisterInline(principal, *dto.NewClient)
		if err != nil {
			return 0, err
		}
		return c.ID, nil
	}

	return s.lookupClient(*dto.ClientID)
}

// lookupClient is the client gate shared by Submit and Update. Pending
// clients are fine, the expense just waits on them. Rejected clients can
// never become valid, so the expense would be stranded.
func (s *Service) lookupClient(id int64) (int64, error) {
	c, err := s.clients.GetByID(id)
	if err != nil {
		return 0, err
	}
	if c.IsRejected() {
		return 0, internal.ErrClientRejected
	}
	return c.ID, nil
}

// GetByID applies the visibility filter before returning anything. An expense
// outside the caller's scope reads as not found, not forbidden.
func (s *Service) GetByID(principal *auth.Principal, id int64) (*Expense, error) {
	e, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	scope, err := s.scopeFor(principal)
	if err != nil {
		return nil, err
	}
	if !scope.Contains(e.UserID) {
		return nil, internal.ErrExpenseNotFound
	}
	return e, nil
}

// ListVisible returns expenses in the principal's scope, optionally narrowed
// by status, category or owner. An owner filter outside the scope yields an
// empty list rather than an error.
func (s *Service) ListVisible(principal *auth.Principal, filter Filter) ([]*Expense, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	scope, err := s.scopeFor(principal)
	if err != nil {
		return nil, err
	}
	if filter.UserID != nil && !scope.Contains(*filter.UserID) {
		return []*Expense{}, nil
	}
	return s.repo.List(scope, filter)
}

// ListPending returns the pending expenses the principal could decide on:
// everything in scope minus their own.
func (s *Service) ListPending(principal *auth.Principal) ([]*Expense, error) {
	if !principal.CanReview() {
		return nil, internal.ErrRoleDenied
	}

	scope, err := s.scopeFor(principal)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.ListPending(scope)
	if err != nil {
		return nil, err
	}

	decidable := make([]*Expense, 0, len(pending))
	for _, e := range pending {
		if e.UserID != principal.ID {
			decidable = append(decidable, e)
		}
	}
	return decidable, nil
}

// Update edits a pending expense. Owner or admin only; anything past pending
// is frozen.
func (s *Service) Update(principal *auth.Principal, id int64, dto UpdateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if e.UserID != principal.ID && !principal.IsAdmin() {
		return nil, internal.ErrNotOwner
	}
	if !e.IsPending() {
		return nil, internal.ErrExpenseNotPending
	}

	if dto.ClientID != nil && *dto.ClientID != e.ClientID {
		clientID, err := s.lookupClient(*dto.ClientID)
		if err != nil {
			return nil, err
		}
		e.ClientID = clientID
	}

	if dto.Amount != nil {
		ceiling, err := s.categories.CeilingFor(e.Category)
		if err != nil {
			return nil, err
		}
		if dto.Category != nil {
			if ceiling, err = s.categories.CeilingFor(*dto.Category); err != nil {
				return nil, err
			}
		}
		if ceiling > 0 && *dto.Amount > ceiling {
			return nil, internal.NewValidationError("amount exceeds the category maximum", internal.ErrCodeAmountTooHigh).
				WithDetails(map[string]interface{}{"max_amount": ceiling})
		}
		e.Amount = *dto.Amount
	}
	if dto.ExpenseDate != nil {
		date, _ := time.Parse(dateLayout, *dto.ExpenseDate)
		e.ExpenseDate = date
	}
	if dto.Category != nil {
		e.Category = *dto.Category
	}
	if dto.Reason != nil {
		e.Reason = *dto.Reason
	}
	if dto.ReceiptImage != nil {
		e.ReceiptImage = *dto.ReceiptImage
	}
	if dto.Latitude != nil {
		e.Latitude = dto.Latitude
		e.Longitude = dto.Longitude
	}
	if dto.Address != nil {
		e.Address = *dto.Address
	}
	e.UpdatedAt = time.Now()

	if err := s.repo.Update(e); err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", id)
		return nil, err
	}

	s.logger.Info("expense updated", "expense_id", id, "by", principal.ID)
	return e, nil
}

// Delete removes a pending expense. Same gate as Update.
func (s *Service) Delete(principal *auth.Principal, id int64) error {
	e, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if e.UserID != principal.ID && !principal.IsAdmin() {
		return internal.ErrNotOwner
	}
	if !e.IsPending() {
		return internal.ErrExpenseNotPending
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return err
	}

	s.logger.Info("expense deleted", "expense_id", id, "by", principal.ID)
	return nil
}

// Decide applies an approval decision. Authorization is evaluated against the
// owner's supervisor linkage as stored right now, and the pending check is
// enforced again atomically in the repository so concurrent deciders cannot
// both win.
func (s *Service) Decide(principal *auth.Principal, expenseID int64, dto DecideDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(expenseID)
	if err != nil {
		return nil, err
	}

	supervisorID, err := s.directory.SupervisorOf(e.UserID)
	if err != nil {
		return nil, err
	}
	if !CanDecide(principal, e.UserID, supervisorID) {
		return nil, s.denialFor(principal, e.UserID)
	}

	if !e.IsPending() {
		return nil, internal.ErrExpenseProcessed
	}

	c, err := s.clients.GetByID(e.ClientID)
	if err != nil {
		return nil, err
	}
	if c.IsRejected() {
		return nil, internal.ErrClientRejected
	}

	toStatus := StatusApproved
	if dto.Action == ActionRejected {
		toStatus = StatusRejected
	}
	approval := &Approval{
		ExpenseID:  expenseID,
		ApproverID: principal.ID,
		Action:     dto.Action,
		Comments:   dto.Comments,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Decide(expenseID, toStatus, approval); err != nil {
		s.logger.Warn("expense decision failed", "error", err, "expense_id", expenseID, "approver_id", principal.ID)
		return nil, err
	}

	s.logger.Info("expense decided",
		"expense_id", expenseID,
		"action", dto.Action,
		"approver_id", principal.ID,
		"owner_id", e.UserID)

	return s.repo.GetByID(expenseID)
}

// denialFor picks the most specific authorization error for a failed decision
// attempt.
func (s *Service) denialFor(principal *auth.Principal, ownerID int64) error {
	if principal.ID == ownerID {
		return internal.ErrSelfApproval
	}
	if principal.Role == auth.RoleSupervisor {
		return internal.ErrNotSupervisor
	}
	return internal.ErrRoleDenied
}

// Stats aggregates over exactly the expenses the principal can see.
func (s *Service) Stats(principal *auth.Principal) (*Stats, error) {
	scope, err := s.scopeFor(principal)
	if err != nil {
		return nil, err
	}
	return s.repo.Stats(scope)
}

// StatsByCategory breaks the visible expenses down per category, largest
// total first. Reporting is a reviewer surface.
func (s *Service) StatsByCategory(principal *auth.Principal) ([]*CategoryStat, error) {
	if !principal.CanReview() {
		return nil, internal.ErrRoleDenied
	}
	scope, err := s.scopeFor(principal)
	if err != nil {
		return nil, err
	}
	return s.repo.StatsByCategory(scope)
}

// StatsByPeriod buckets the visible expenses of one year by month. A month of
// zero covers the whole year; a zero year means the current one.
func (s *Service) StatsByPeriod(principal *auth.Principal, year, month int) (*PeriodStats, error) {
	if !principal.CanReview() {
		return nil, internal.ErrRoleDenied
	}
	if year == 0 {
		year = time.Now().Year()
	}
	if month < 0 || month > 12 {
		return nil, internal.NewValidationError("month must be between 1 and 12", internal.ErrCodeValidationFailed)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	if month != 0 {
		from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	}

	scope, err := s.scopeFor(principal)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repo.ListForPeriod(scope, from, to)
	if err != nil {
		return nil, err
	}

	buckets := make(map[int]*PeriodBucket)
	stats := &PeriodStats{Year: year}
	for _, e := range expenses {
		m := int(e.ExpenseDate.Month())
		b, ok := buckets[m]
		if !ok {
			b = &PeriodBucket{Month: m}
			buckets[m] = b
		}
		b.Count++
		b.Total += e.Amount
		stats.Count++
		stats.Total += e.Amount
	}
	for m := 1; m <= 12; m++ {
		if b, ok := buckets[m]; ok {
			stats.Months = append(stats.Months, *b)
		}
	}
	return stats, nil
}

// StatsByArea rolls all expenses up to the owners' areas. Admin only; areas
// cut across supervisor lines.
func (s *Service) StatsByArea(principal *auth.Principal) ([]*AreaStat, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrRoleDenied
	}
	stats, err := s.repo.StatsByArea()
	if err != nil {
		return nil, err
	}
	for _, st := range stats {
		if st.BudgetMonthly > 0 {
			st.BudgetUsage = st.TotalAmount / st.BudgetMonthly * 100
		}
	}
	return stats, nil
}

// ApprovalHistory lists the expense's decision trail, visibility-gated the
// same way as the expense itself.
func (s *Service) ApprovalHistory(principal *auth.Principal, expenseID int64) ([]*Approval, error) {
	if _, err := s.GetByID(principal, expenseID); err != nil {
		return nil, err
	}
	return s.repo.ApprovalsByExpense(expenseID)
}

// DecisionsBy lists the decisions the principal has made as an approver.
func (s *Service) DecisionsBy(principal *auth.Principal) ([]*Approval, error) {
	if !principal.CanReview() {
		return nil, internal.ErrRoleDenied
	}
	return s.repo.ApprovalsByApprover(principal.ID)
}

func (s *Service) scopeFor(principal *auth.Principal) (Scope, error) {
	if principal.Role == auth.RoleSupervisor {
		reports, err := s.directory.DirectReportIDs(principal.ID)
		if err != nil {
			return Scope{}, err
		}
		return ScopeFor(principal, reports), nil
	}
	return ScopeFor(principal, nil), nil
}
