package category

import (
	"log/slog"
)

type RepositoryAPI interface {
	GetAll() ([]*ExpenseCategory, error)
	GetByID(id int64) (*ExpenseCategory, error)
	GetByName(name string) (*ExpenseCategory, error)
	Create(category *ExpenseCategory) error
	Update(category *ExpenseCategory) error
	Delete(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllCategories() ([]CategoryResponse, error) {
	categories, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	var responses []CategoryResponse
	for _, c := range categories {
		if c.IsActive {
			responses = append(responses, c.ToResponse())
		}
	}

	return responses, nil
}

func (s *Service) GetCategoryByName(name string) (*ExpenseCategory, error) {
	c, err := s.repo.GetByName(name)
	if err != nil {
		s.logger.Error("failed to look up category", "name", name, "error", err)
		return nil, err
	}
	if c == nil || !c.IsActive {
		return nil, nil
	}
	return c, nil
}

// CeilingFor returns the max amount for a named category, or zero when the
// category is unknown or has no ceiling. Unknown categories are allowed on
// submit; only ceilings of known active categories are enforced.
func (s *Service) CeilingFor(name string) (float64, error) {
	c, err := s.GetCategoryByName(name)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, nil
	}
	return c.MaxAmount, nil
}
