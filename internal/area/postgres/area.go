package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/area"
)

type AreaRepository struct {
	db *gorm.DB
}

func NewAreaRepository(db *gorm.DB) area.RepositoryAPI {
	return &AreaRepository{db: db}
}

func (r *AreaRepository) Create(a *area.Area) error {
	return r.db.Create(a).Error
}

func (r *AreaRepository) GetByID(id int64) (*area.Area, error) {
	var a area.Area
	err := r.db.Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAreaNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AreaRepository) GetAll() ([]*area.Area, error) {
	var areas []*area.Area
	err := r.db.Order("name ASC").Find(&areas).Error
	return areas, err
}

func (r *AreaRepository) GetActive() ([]*area.Area, error) {
	var areas []*area.Area
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&areas).Error
	return areas, err
}

func (r *AreaRepository) Update(a *area.Area) error {
	return r.db.Save(a).Error
}
