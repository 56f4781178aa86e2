package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/expense"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(e *expense.Expense) error {
	return r.db.Create(e).Error
}

func (r *ExpenseRepository) GetByID(id int64) (*expense.Expense, error) {
	var e expense.Expense
	err := r.db.Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *ExpenseRepository) List(scope expense.Scope, filter expense.Filter) ([]*expense.Expense, error) {
	q := r.scoped(scope)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var expenses []*expense.Expense
	err := q.Order("created_at DESC").Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) ListPending(scope expense.Scope) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.scoped(scope).
		Where("status = ?", expense.StatusPending).
		Order("created_at ASC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) Update(e *expense.Expense) error {
	return r.db.Save(e).Error
}

func (r *ExpenseRepository) Delete(id int64) error {
	res := r.db.Where("id = ?", id).Delete(&expense.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrExpenseNotFound
	}
	return nil
}

// Decide is the serialization point for concurrent decisions. The conditional
// UPDATE only matches while the expense is still pending; the loser of a race
// sees zero rows affected and the approval insert never happens for it.
func (r *ExpenseRepository) Decide(expenseID int64, toStatus string, approval *expense.Approval) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&expense.Expense{}).
			Where("id = ? AND status = ?", expenseID, expense.StatusPending).
			Updates(map[string]interface{}{
				"status":     toStatus,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return transitionConflict(tx, expenseID)
		}

		return tx.Create(approval).Error
	})
}

func (r *ExpenseRepository) Stats(scope expense.Scope) (*expense.Stats, error) {
	type row struct {
		Status string
		Count  int64
		Amount float64
	}
	var rows []row
	err := r.scoped(scope).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &expense.Stats{}
	for _, rw := range rows {
		stats.Total += rw.Count
		stats.TotalAmount += rw.Amount
		switch rw.Status {
		case expense.StatusPending:
			stats.Pending = rw.Count
		case expense.StatusApproved:
			stats.Approved = rw.Count
			stats.ApprovedAmount = rw.Amount
		case expense.StatusRejected:
			stats.Rejected = rw.Count
		case expense.StatusReimbursed:
			stats.Reimbursed = rw.Count
		}
	}
	return stats, nil
}

func (r *ExpenseRepository) StatsByCategory(scope expense.Scope) ([]*expense.CategoryStat, error) {
	var out []*expense.CategoryStat
	err := r.scoped(scope).
		Select("category, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total, COALESCE(AVG(amount), 0) AS average, COALESCE(MIN(amount), 0) AS min_amount, COALESCE(MAX(amount), 0) AS max_amount").
		Group("category").
		Order("total DESC").
		Scan(&out).Error
	return out, err
}

func (r *ExpenseRepository) ListForPeriod(scope expense.Scope, from, to time.Time) ([]*expense.Expense, error) {
	var out []*expense.Expense
	err := r.scoped(scope).
		Where("expense_date >= ? AND expense_date < ?", from, to).
		Order("expense_date DESC").
		Find(&out).Error
	return out, err
}

// StatsByArea joins through users to attribute expenses to areas. Inactive
// areas are excluded; areas without expenses still appear with zero counts.
func (r *ExpenseRepository) StatsByArea() ([]*expense.AreaStat, error) {
	var out []*expense.AreaStat
	err := r.db.Table("areas").
		Select("areas.id AS area_id, areas.name AS area_name, areas.budget_monthly AS budget_monthly, COUNT(expenses.id) AS expense_count, COALESCE(SUM(expenses.amount), 0) AS total_amount, COALESCE(SUM(CASE WHEN expenses.status = 'pending' THEN 1 ELSE 0 END), 0) AS pending, COALESCE(SUM(CASE WHEN expenses.status = 'approved' THEN 1 ELSE 0 END), 0) AS approved").
		Joins("LEFT JOIN users ON users.area_id = areas.id").
		Joins("LEFT JOIN expenses ON expenses.user_id = users.id").
		Where("areas.is_active = ?", true).
		Group("areas.id, areas.name, areas.budget_monthly").
		Order("total_amount DESC").
		Scan(&out).Error
	return out, err
}

func (r *ExpenseRepository) ApprovalsByExpense(expenseID int64) ([]*expense.Approval, error) {
	var approvals []*expense.Approval
	err := r.db.Where("expense_id = ?", expenseID).Order("created_at ASC").Find(&approvals).Error
	return approvals, err
}

func (r *ExpenseRepository) ApprovalsByApprover(approverID int64) ([]*expense.Approval, error) {
	var approvals []*expense.Approval
	err := r.db.Where("approver_id = ?", approverID).Order("created_at DESC").Find(&approvals).Error
	return approvals, err
}

// scoped applies the visibility predicate before any other filter.
func (r *ExpenseRepository) scoped(scope expense.Scope) *gorm.DB {
	q := r.db.Model(&expense.Expense{})
	if scope.All {
		return q
	}
	return q.Where("user_id IN ?", scope.OwnerIDs)
}

func transitionConflict(tx *gorm.DB, expenseID int64) error {
	var e expense.Expense
	if err := tx.Where("id = ?", expenseID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.ErrExpenseNotFound
		}
		return err
	}
	return internal.ErrExpenseProcessed
}
