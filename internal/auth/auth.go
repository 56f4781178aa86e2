package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role is the single authorization axis: read scope widens user -> supervisor -> admin.
type Role string

const (
	RoleUser       Role = "user"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// Principal is the acting identity resolved for every request.
// SupervisorID is nil for users at the top of the reporting tree.
type Principal struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	SupervisorID *int64 `json:"supervisor_id,omitempty"`
}

func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p *Principal) IsSupervisor() bool {
	return p.Role == RoleSupervisor
}

// CanReview reports whether the principal's role can decide expenses at all.
// Per-expense checks (self-approval, direct-report scope) happen in the
// expense package.
func (p *Principal) CanReview() bool {
	return p.Role == RoleSupervisor || p.Role == RoleAdmin
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// BcryptHasher is the password hasher handed to account management flows.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) HashPassword(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return HashPassword(password, cost)
}

type principalCtxKey struct{}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return p, ok
}
