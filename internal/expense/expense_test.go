package expense_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gastoscl/rendiciones/internal/auth"
	"github.com/gastoscl/rendiciones/internal/expense"
)

var _ = Describe("CanDecide", func() {
	supID := int64(2)

	It("denies deciding your own expense regardless of role", func() {
		admin := &auth.Principal{ID: 1, Role: auth.RoleAdmin}
		Expect(expense.CanDecide(admin, 1, nil)).To(BeFalse())

		sup := &auth.Principal{ID: 2, Role: auth.RoleSupervisor}
		Expect(expense.CanDecide(sup, 2, &supID)).To(BeFalse())
	})

	It("allows admins on anyone else's expense", func() {
		admin := &auth.Principal{ID: 1, Role: auth.RoleAdmin}
		Expect(expense.CanDecide(admin, 3, nil)).To(BeTrue())
		Expect(expense.CanDecide(admin, 3, &supID)).To(BeTrue())
	})

	It("allows supervisors only for direct reports", func() {
		sup := &auth.Principal{ID: 2, Role: auth.RoleSupervisor}
		Expect(expense.CanDecide(sup, 3, &supID)).To(BeTrue())

		other := int64(9)
		Expect(expense.CanDecide(sup, 3, &other)).To(BeFalse())
		Expect(expense.CanDecide(sup, 3, nil)).To(BeFalse())
	})

	It("denies regular users always", func() {
		u := &auth.Principal{ID: 5, Role: auth.RoleUser}
		Expect(expense.CanDecide(u, 3, &supID)).To(BeFalse())
	})
})

var _ = Describe("ScopeFor", func() {
	It("gives admins everything", func() {
		scope := expense.ScopeFor(&auth.Principal{ID: 1, Role: auth.RoleAdmin}, nil)
		Expect(scope.All).To(BeTrue())
		Expect(scope.Contains(999)).To(BeTrue())
	})

	It("gives supervisors themselves plus direct reports, never transitively", func() {
		scope := expense.ScopeFor(&auth.Principal{ID: 2, Role: auth.RoleSupervisor}, []int64{3, 4})
		Expect(scope.Contains(2)).To(BeTrue())
		Expect(scope.Contains(3)).To(BeTrue())
		Expect(scope.Contains(4)).To(BeTrue())
		Expect(scope.Contains(5)).To(BeFalse())
	})

	It("gives users only themselves", func() {
		scope := expense.ScopeFor(&auth.Principal{ID: 3, Role: auth.RoleUser}, nil)
		Expect(scope.Contains(3)).To(BeTrue())
		Expect(scope.Contains(2)).To(BeFalse())
	})
})
