package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/area"
	"github.com/gastoscl/rendiciones/internal/expense"
	"github.com/gastoscl/rendiciones/internal/user"
)

func TestExpenseRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ExpenseRepository Suite")
}

var _ = Describe("ExpenseRepository", func() {
	var (
		db   *gorm.DB
		repo expense.RepositoryAPI
	)

	newExpense := func(userID int64, status string) *expense.Expense {
		e := &expense.Expense{
			UserID:       userID,
			ClientID:     1,
			Amount:       15000,
			ExpenseDate:  time.Now().AddDate(0, 0, -1),
			Category:     "Transporte",
			Reason:       "Taxi",
			ReceiptImage: "receipt.jpg",
			Status:       status,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		Expect(repo.Create(e)).To(Succeed())
		return e
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&expense.Expense{}, &expense.Approval{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewExpenseRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Decide", func() {
		It("moves a pending expense to approved and records the approval", func() {
			e := newExpense(3, expense.StatusPending)

			err := repo.Decide(e.ID, expense.StatusApproved, &expense.Approval{
				ExpenseID:  e.ID,
				ApproverID: 2,
				Action:     expense.ActionApproved,
				CreatedAt:  time.Now(),
			})
			Expect(err).NotTo(HaveOccurred())

			stored, err := repo.GetByID(e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(expense.StatusApproved))

			approvals, err := repo.ApprovalsByExpense(e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approvals).To(HaveLen(1))
			Expect(approvals[0].ApproverID).To(Equal(int64(2)))
		})

		It("conflicts on the second decision and records no extra approval", func() {
			e := newExpense(3, expense.StatusPending)

			first := repo.Decide(e.ID, expense.StatusApproved, &expense.Approval{
				ExpenseID: e.ID, ApproverID: 2, Action: expense.ActionApproved, CreatedAt: time.Now(),
			})
			Expect(first).NotTo(HaveOccurred())

			second := repo.Decide(e.ID, expense.StatusRejected, &expense.Approval{
				ExpenseID: e.ID, ApproverID: 1, Action: expense.ActionRejected, Comments: "no", CreatedAt: time.Now(),
			})
			Expect(second).To(MatchError(internal.ErrExpenseProcessed))

			stored, err := repo.GetByID(e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(expense.StatusApproved))

			approvals, err := repo.ApprovalsByExpense(e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approvals).To(HaveLen(1))
		})

		It("reports not found for a missing expense", func() {
			err := repo.Decide(9999, expense.StatusApproved, &expense.Approval{
				ExpenseID: 9999, ApproverID: 2, Action: expense.ActionApproved, CreatedAt: time.Now(),
			})
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			newExpense(3, expense.StatusPending)
			newExpense(3, expense.StatusApproved)
			newExpense(4, expense.StatusPending)
		})

		It("applies the scope before any filter", func() {
			expenses, err := repo.List(expense.Scope{OwnerIDs: []int64{3}}, expense.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(2))
		})

		It("narrows by status inside the scope", func() {
			expenses, err := repo.List(expense.Scope{OwnerIDs: []int64{3}}, expense.Filter{Status: expense.StatusPending})
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(1))
		})

		It("the all-scope sees every owner", func() {
			expenses, err := repo.List(expense.Scope{All: true}, expense.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(3))
		})
	})

	Describe("ListPending", func() {
		It("returns only pending expenses inside the scope", func() {
			newExpense(3, expense.StatusPending)
			newExpense(3, expense.StatusRejected)
			newExpense(4, expense.StatusPending)

			pending, err := repo.ListPending(expense.Scope{OwnerIDs: []int64{3}})
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].UserID).To(Equal(int64(3)))
		})
	})

	Describe("Stats", func() {
		It("aggregates counts and amounts per status over the scope", func() {
			newExpense(3, expense.StatusPending)
			newExpense(3, expense.StatusApproved)
			newExpense(4, expense.StatusApproved)

			stats, err := repo.Stats(expense.Scope{OwnerIDs: []int64{3}})
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Total).To(Equal(int64(2)))
			Expect(stats.Pending).To(Equal(int64(1)))
			Expect(stats.Approved).To(Equal(int64(1)))
			Expect(stats.TotalAmount).To(Equal(30000.0))
			Expect(stats.ApprovedAmount).To(Equal(15000.0))
		})
	})

	Describe("StatsByCategory", func() {
		newCategorized := func(userID int64, category string, amount float64) {
			e := &expense.Expense{
				UserID:       userID,
				ClientID:     1,
				Amount:       amount,
				ExpenseDate:  time.Now(),
				Category:     category,
				Reason:       "r",
				ReceiptImage: "receipt.jpg",
				Status:       expense.StatusPending,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			Expect(repo.Create(e)).To(Succeed())
		}

		It("aggregates per category over the scope, largest total first", func() {
			newCategorized(3, "Transporte", 10000)
			newCategorized(3, "Transporte", 30000)
			newCategorized(3, "Alimentación", 8000)
			newCategorized(4, "Transporte", 99999)

			stats, err := repo.StatsByCategory(expense.Scope{OwnerIDs: []int64{3}})
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(HaveLen(2))

			Expect(stats[0].Category).To(Equal("Transporte"))
			Expect(stats[0].Count).To(Equal(int64(2)))
			Expect(stats[0].Total).To(Equal(40000.0))
			Expect(stats[0].Average).To(Equal(20000.0))
			Expect(stats[0].MinAmount).To(Equal(10000.0))
			Expect(stats[0].MaxAmount).To(Equal(30000.0))

			Expect(stats[1].Category).To(Equal("Alimentación"))
			Expect(stats[1].Total).To(Equal(8000.0))
		})
	})

	Describe("ListForPeriod", func() {
		newDated := func(userID int64, date time.Time) {
			e := &expense.Expense{
				UserID:       userID,
				ClientID:     1,
				Amount:       5000,
				ExpenseDate:  date,
				Category:     "Transporte",
				Reason:       "r",
				ReceiptImage: "receipt.jpg",
				Status:       expense.StatusPending,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			Expect(repo.Create(e)).To(Succeed())
		}

		It("returns only expenses inside the window and the scope", func() {
			newDated(3, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
			newDated(3, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
			newDated(3, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
			newDated(4, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

			from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			to := from.AddDate(1, 0, 0)

			expenses, err := repo.ListForPeriod(expense.Scope{OwnerIDs: []int64{3}}, from, to)
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(1))
			Expect(expenses[0].ExpenseDate.Year()).To(Equal(2026))
		})
	})

	Describe("StatsByArea", func() {
		BeforeEach(func() {
			Expect(db.AutoMigrate(&area.Area{}, &user.User{})).To(Succeed())
		})

		It("attributes expenses to the owner's area and skips inactive areas", func() {
			ops := &area.Area{Name: "Operaciones", BudgetMonthly: 200000, IsActive: true, CreatedAt: time.Now()}
			closed := &area.Area{Name: "Cerrada", IsActive: false, CreatedAt: time.Now()}
			Expect(db.Create(ops).Error).To(Succeed())
			Expect(db.Create(closed).Error).To(Succeed())

			owner := &user.User{Email: "o@mail.com", FirstName: "O", LastName: "O", Role: "user", AreaID: &ops.ID, IsActive: true, CreatedAt: time.Now()}
			Expect(db.Create(owner).Error).To(Succeed())

			newExpense(owner.ID, expense.StatusPending)
			newExpense(owner.ID, expense.StatusApproved)
			newExpense(999, expense.StatusPending) // no area

			stats, err := repo.StatsByArea()
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(HaveLen(1))
			Expect(stats[0].AreaName).To(Equal("Operaciones"))
			Expect(stats[0].ExpenseCount).To(Equal(int64(2)))
			Expect(stats[0].TotalAmount).To(Equal(30000.0))
			Expect(stats[0].Pending).To(Equal(int64(1)))
			Expect(stats[0].Approved).To(Equal(int64(1)))
		})

		It("keeps areas without expenses at zero counts", func() {
			empty := &area.Area{Name: "Ventas", BudgetMonthly: 100000, IsActive: true, CreatedAt: time.Now()}
			Expect(db.Create(empty).Error).To(Succeed())

			stats, err := repo.StatsByArea()
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(HaveLen(1))
			Expect(stats[0].ExpenseCount).To(BeZero())
			Expect(stats[0].TotalAmount).To(BeZero())
		})
	})
})
