package postgres

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/client"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) client.RepositoryAPI {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(c *client.Client) error {
	err := r.db.Create(c).Error
	if err != nil && isUniqueViolation(err) {
		return internal.ErrDuplicateRUT
	}
	return err
}

func (r *ClientRepository) GetByID(id int64) (*client.Client, error) {
	var c client.Client
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) GetByRUT(rut string) (*client.Client, error) {
	var c client.Client
	err := r.db.Where("rut = ?", rut).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) GetActive() ([]*client.Client, error) {
	var clients []*client.Client
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&clients).Error
	return clients, err
}

func (r *ClientRepository) GetPending() ([]*client.Client, error) {
	var clients []*client.Client
	err := r.db.Where("status = ?", client.StatusPending).Order("created_at ASC").Find(&clients).Error
	return clients, err
}

// Approve transitions pending -> active. The conditional UPDATE is the
// serialization point: whichever transaction commits first wins and every
// later attempt sees zero rows affected.
func (r *ClientRepository) Approve(clientID int64) (*client.Client, int64, error) {
	var approved client.Client
	var pendingExpenses int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&client.Client{}).
			Where("id = ? AND status = ?", clientID, client.StatusPending).
			Updates(map[string]interface{}{
				"status":    client.StatusActive,
				"is_active": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return transitionConflict(tx, clientID)
		}

		if err := tx.Table("expenses").
			Where("client_id = ? AND status = ?", clientID, "pending").
			Count(&pendingExpenses).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", clientID).First(&approved).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &approved, pendingExpenses, nil
}

// Reject transitions pending -> rejected and rejects every pending expense
// referencing the client inside the same transaction, so no partial cascade
// is ever observable.
func (r *ClientRepository) Reject(clientID int64) (*client.Client, int64, error) {
	var rejected client.Client
	var rejectedExpenses int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&client.Client{}).
			Where("id = ? AND status = ?", clientID, client.StatusPending).
			Updates(map[string]interface{}{
				"status":    client.StatusRejected,
				"is_active": false,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return transitionConflict(tx, clientID)
		}

		cascade := tx.Table("expenses").
			Where("client_id = ? AND status = ?", clientID, "pending").
			Updates(map[string]interface{}{
				"status":     "rejected",
				"updated_at": time.Now(),
			})
		if cascade.Error != nil {
			return cascade.Error
		}
		rejectedExpenses = cascade.RowsAffected

		return tx.Where("id = ?", clientID).First(&rejected).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &rejected, rejectedExpenses, nil
}

// transitionConflict distinguishes a missing client from one that already
// left pending.
func transitionConflict(tx *gorm.DB, clientID int64) error {
	var c client.Client
	if err := tx.Where("id = ?", clientID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.ErrClientNotFound
		}
		return err
	}
	return internal.ErrClientProcessed
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
