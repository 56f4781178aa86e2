package area

import (
	"log/slog"
	"time"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/auth"
)

type RepositoryAPI interface {
	Create(a *Area) error
	GetByID(id int64) (*Area, error)
	GetAll() ([]*Area, error)
	GetActive() ([]*Area, error)
	Update(a *Area) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(principal *auth.Principal) ([]*Area, error) {
	if principal.IsAdmin() {
		return s.repo.GetAll()
	}
	return s.repo.GetActive()
}

func (s *Service) Create(principal *auth.Principal, dto CreateAreaDTO) (*Area, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrRoleDenied
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a := &Area{
		Name:          dto.Name,
		BudgetMonthly: dto.BudgetMonthly,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	if err := s.repo.Create(a); err != nil {
		s.logger.Error("failed to create area", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("area created", "area_id", a.ID, "created_by", principal.ID)
	return a, nil
}

func (s *Service) Update(principal *auth.Principal, id int64, dto UpdateAreaDTO) (*Area, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrRoleDenied
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		a.Name = *dto.Name
	}
	if dto.BudgetMonthly != nil {
		a.BudgetMonthly = *dto.BudgetMonthly
	}
	if dto.IsActive != nil {
		a.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(a); err != nil {
		s.logger.Error("failed to update area", "error", err, "area_id", id)
		return nil, err
	}
	return a, nil
}
