package client_test

import (
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/auth"
	"github.com/gastoscl/rendiciones/internal/client"
)

type mockClientRepository struct {
	clients      map[int64]*client.Client
	byRUT        map[string]*client.Client
	nextID       int64
	createError  error
	approveError error
	rejectError  error
	pendingCount int64
	cascadeCount int64
}

func newMockClientRepository() *mockClientRepository {
	return &mockClientRepository{
		clients: make(map[int64]*client.Client),
		byRUT:   make(map[string]*client.Client),
		nextID:  1,
	}
}

func (m *mockClientRepository) Create(c *client.Client) error {
	if m.createError != nil {
		return m.createError
	}
	c.ID = m.nextID
	m.nextID++
	m.clients[c.ID] = c
	m.byRUT[c.RUT] = c
	return nil
}

func (m *mockClientRepository) GetByID(id int64) (*client.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, internal.ErrClientNotFound
	}
	return c, nil
}

func (m *mockClientRepository) GetByRUT(rut string) (*client.Client, error) {
	c, ok := m.byRUT[rut]
	if !ok {
		return nil, internal.ErrClientNotFound
	}
	return c, nil
}

func (m *mockClientRepository) GetActive() ([]*client.Client, error) {
	var active []*client.Client
	for _, c := range m.clients {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (m *mockClientRepository) GetPending() ([]*client.Client, error) {
	var pending []*client.Client
	for _, c := range m.clients {
		if c.IsPending() {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

func (m *mockClientRepository) Approve(clientID int64) (*client.Client, int64, error) {
	if m.approveError != nil {
		return nil, 0, m.approveError
	}
	c, ok := m.clients[clientID]
	if !ok {
		return nil, 0, internal.ErrClientNotFound
	}
	if !c.IsPending() {
		return nil, 0, internal.ErrClientProcessed
	}
	c.Status = client.StatusActive
	c.IsActive = true
	return c, m.pendingCount, nil
}

func (m *mockClientRepository) Reject(clientID int64) (*client.Client, int64, error) {
	if m.rejectError != nil {
		return nil, 0, m.rejectError
	}
	c, ok := m.clients[clientID]
	if !ok {
		return nil, 0, internal.ErrClientNotFound
	}
	if !c.IsPending() {
		return nil, 0, internal.ErrClientProcessed
	}
	c.Status = client.StatusRejected
	c.IsActive = false
	return c, m.cascadeCount, nil
}

var _ = Describe("ClientService", func() {
	var (
		service  *client.Service
		mockRepo *mockClientRepository
		admin    *auth.Principal
		employee *auth.Principal
	)

	BeforeEach(func() {
		mockRepo = newMockClientRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = client.NewService(mockRepo, logger)
		admin = &auth.Principal{ID: 1, Email: "admin@mail.com", Role: auth.RoleAdmin}
		employee = &auth.Principal{ID: 2, Email: "user@mail.com", Role: auth.RoleUser}
	})

	Describe("Register", func() {
		It("creates a pending, inactive client with a formatted RUT", func() {
			c, err := service.Register(employee, client.RegisterClientDTO{
				RUT:  "123456785",
				Name: "Constructora Andes SpA",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(c.RUT).To(Equal("12.345.678-5"))
			Expect(c.Status).To(Equal(client.StatusPending))
			Expect(c.IsActive).To(BeFalse())
			Expect(c.CreatedBy).To(Equal(employee.ID))
			Expect(c.CreatedWithExpense).To(BeFalse())
		})

		It("rejects an invalid RUT", func() {
			_, err := service.Register(employee, client.RegisterClientDTO{
				RUT:  "12.345.678-9",
				Name: "Bad RUT Inc",
			})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a duplicate RUT even when formatted differently", func() {
			_, err := service.Register(employee, client.RegisterClientDTO{RUT: "12.345.678-5", Name: "First"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Register(employee, client.RegisterClientDTO{RUT: "123456785", Name: "Second"})
			Expect(err).To(MatchError(internal.ErrDuplicateRUT))
		})
	})

	Describe("RegisterInline", func() {
		It("flags the client as created alongside an expense", func() {
			c, err := service.RegisterInline(employee, client.RegisterClientDTO{
				RUT:  "87.654.321-4",
				Name: "Servicios del Sur",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(c.CreatedWithExpense).To(BeTrue())
			Expect(c.Status).To(Equal(client.StatusPending))
		})
	})

	Describe("ListPending", func() {
		It("denies non-admins", func() {
			_, err := service.ListPending(employee)
			Expect(err).To(MatchError(internal.ErrRoleDenied))
		})

		It("returns pending clients for admins", func() {
			_, err := service.Register(employee, client.RegisterClientDTO{RUT: "123456785", Name: "Pending Co"})
			Expect(err).ToNot(HaveOccurred())

			pending, err := service.ListPending(admin)
			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(HaveLen(1))
		})
	})

	Describe("Approve", func() {
		var pendingID int64

		BeforeEach(func() {
			c, err := service.Register(employee, client.RegisterClientDTO{RUT: "123456785", Name: "Pending Co"})
			Expect(err).ToNot(HaveOccurred())
			pendingID = c.ID
		})

		It("denies non-admins", func() {
			_, err := service.Approve(employee, pendingID)
			Expect(err).To(MatchError(internal.ErrRoleDenied))
		})

		It("activates the client and reports waiting expenses", func() {
			mockRepo.pendingCount = 3

			result, err := service.Approve(admin, pendingID)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Client.Status).To(Equal(client.StatusActive))
			Expect(result.Client.IsActive).To(BeTrue())
			Expect(result.PendingExpenses).To(Equal(int64(3)))
		})

		It("fails with a state conflict when the client already left pending", func() {
			_, err := service.Approve(admin, pendingID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Approve(admin, pendingID)
			Expect(err).To(MatchError(internal.ErrClientProcessed))
		})
	})

	Describe("Reject", func() {
		var pendingID int64

		BeforeEach(func() {
			c, err := service.Register(employee, client.RegisterClientDTO{RUT: "123456785", Name: "Pending Co"})
			Expect(err).ToNot(HaveOccurred())
			pendingID = c.ID
		})

		It("denies non-admins", func() {
			_, err := service.Reject(employee, pendingID)
			Expect(err).To(MatchError(internal.ErrRoleDenied))
		})

		It("rejects the client and reports the cascade size", func() {
			mockRepo.cascadeCount = 2

			result, err := service.Reject(admin, pendingID)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Client.Status).To(Equal(client.StatusRejected))
			Expect(result.Client.IsActive).To(BeFalse())
			Expect(result.RejectedExpenses).To(Equal(int64(2)))
		})

		It("cannot reject an already approved client", func() {
			_, err := service.Approve(admin, pendingID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Reject(admin, pendingID)
			Expect(err).To(MatchError(internal.ErrClientProcessed))
		})

		It("registering the same RUT again after rejection is a duplicate", func() {
			_, err := service.Reject(admin, pendingID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Register(employee, client.RegisterClientDTO{RUT: "123456785", Name: "Again"})
			Expect(err).To(MatchError(internal.ErrDuplicateRUT))
		})
	})
})
