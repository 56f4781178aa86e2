package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gastoscl/rendiciones/internal/category"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll() ([]*category.ExpenseCategory, error) {
	var categories []*category.ExpenseCategory
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByName(name string) (*category.ExpenseCategory, error) {
	var cat category.ExpenseCategory
	err := r.db.Where("name = ?", name).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) GetByID(id int64) (*category.ExpenseCategory, error) {
	var cat category.ExpenseCategory
	err := r.db.Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(cat *category.ExpenseCategory) error {
	return r.db.Create(cat).Error
}

func (r *CategoryRepository) Update(cat *category.ExpenseCategory) error {
	return r.db.Save(cat).Error
}

func (r *CategoryRepository) Delete(id int64) error {
	return r.db.Model(&category.ExpenseCategory{}).Where("id = ?", id).Update("is_active", false).Error
}
