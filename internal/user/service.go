package user

import (
	"log/slog"
	"time"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/auth"
)

type RepositoryAPI interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	GetAll() ([]*User, error)
	GetDirectReports(supervisorID int64) ([]*User, error)
	// GetTeam returns the supervisor and their direct reports in one query.
	GetTeam(supervisorID int64) ([]*User, error)
	Update(u *User) error
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo   RepositoryAPI
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// ListVisible narrows users to the principal's read scope: admins see all,
// supervisors see themselves plus direct reports, everyone else sees only
// themselves.
func (s *Service) ListVisible(principal *auth.Principal) ([]*User, error) {
	switch principal.Role {
	case auth.RoleAdmin:
		return s.repo.GetAll()
	case auth.RoleSupervisor:
		return s.repo.GetTeam(principal.ID)
	default:
		self, err := s.repo.GetByID(principal.ID)
		if err != nil {
			return nil, err
		}
		return []*User{self}, nil
	}
}

func (s *Service) GetByID(principal *auth.Principal, id int64) (*User, error) {
	if !principal.IsAdmin() && principal.ID != id {
		return nil, internal.ErrRoleDenied
	}
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Create(principal *auth.Principal, dto CreateUserDTO) (*User, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrRoleDenied
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, internal.ErrDuplicateEmail
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Email:        dto.Email,
		PasswordHash: hash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Role:         dto.Role,
		AreaID:       dto.AreaID,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	if dto.SupervisorID != nil {
		if err := s.validateSupervisor(0, *dto.SupervisorID); err != nil {
			return nil, err
		}
		u.SupervisorID = dto.SupervisorID
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role, "created_by", principal.ID)
	return u, nil
}

func (s *Service) Update(principal *auth.Principal, id int64, dto UpdateUserDTO) (*User, error) {
	if !principal.IsAdmin() {
		return nil, internal.ErrRoleDenied
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil && *dto.Email != u.Email {
		if existing, err := s.repo.GetByEmail(*dto.Email); err == nil && existing != nil {
			return nil, internal.ErrDuplicateEmail
		}
		u.Email = *dto.Email
	}
	if dto.Password != nil {
		hash, err := s.hasher.HashPassword(*dto.Password)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
	}
	if dto.FirstName != nil {
		u.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		u.LastName = *dto.LastName
	}
	if dto.Role != nil {
		u.Role = *dto.Role
	}
	if dto.AreaID != nil {
		u.AreaID = dto.AreaID
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}
	if dto.SupervisorID != nil {
		if err := s.validateSupervisor(u.ID, *dto.SupervisorID); err != nil {
			return nil, err
		}
		u.SupervisorID = dto.SupervisorID
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "updated_by", principal.ID)
	return u, nil
}

// DirectReportIDs returns the IDs of users directly supervised by the given
// user. Indirect reports are excluded on purpose; supervision never chains.
func (s *Service) DirectReportIDs(supervisorID int64) ([]int64, error) {
	reports, err := s.repo.GetDirectReports(supervisorID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// SupervisorOf returns the current supervisor linkage of a user, nil when the
// user reports to nobody.
func (s *Service) SupervisorOf(userID int64) (*int64, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return u.SupervisorID, nil
}

// validateSupervisor rejects self-assignment and assignments that would close
// a cycle. The stored tree is acyclic, so walking up from the candidate
// supervisor always terminates.
func (s *Service) validateSupervisor(userID, supervisorID int64) error {
	if supervisorID == userID {
		return internal.ErrSupervisorCycle
	}

	current := supervisorID
	for {
		sup, err := s.repo.GetByID(current)
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
				return internal.NewValidationError("supervisor does not exist", internal.ErrCodeValidationFailed)
			}
			return err
		}
		if sup.SupervisorID == nil {
			return nil
		}
		if *sup.SupervisorID == userID {
			return internal.ErrSupervisorCycle
		}
		current = *sup.SupervisorID
	}
}
