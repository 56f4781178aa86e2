package auth_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"log/slog"
	"os"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockAuthRepository struct {
	creds      map[string]*auth.Credentials
	principals map[int64]*auth.Principal
	lastLogin  map[int64]bool
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		creds:      make(map[string]*auth.Credentials),
		principals: make(map[int64]*auth.Principal),
		lastLogin:  make(map[int64]bool),
	}
}

func (m *mockAuthRepository) GetCredentialsByEmail(email string) (*auth.Credentials, error) {
	c, ok := m.creds[email]
	if !ok {
		return nil, internal.ErrInvalidCredentials
	}
	return c, nil
}

func (m *mockAuthRepository) GetPrincipal(userID int64) (*auth.Principal, error) {
	p, ok := m.principals[userID]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return p, nil
}

func (m *mockAuthRepository) TouchLastLogin(userID int64) error {
	m.lastLogin[userID] = true
	return nil
}

var _ = Describe("AuthService", func() {
	var (
		service  *auth.Service
		mockRepo *mockAuthRepository
		tokens   *auth.JWTTokenGenerator
	)

	const (
		accessSecret  = "access-secret-at-least-32-characters!!"
		refreshSecret = "refresh-secret-at-least-32-characters!"
	)

	addUser := func(id int64, email, password string, active bool) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).ToNot(HaveOccurred())
		mockRepo.creds[email] = &auth.Credentials{UserID: id, PasswordHash: string(hash), IsActive: active}
		mockRepo.principals[id] = &auth.Principal{ID: id, Email: email, Role: auth.RoleUser}
	}

	BeforeEach(func() {
		mockRepo = newMockAuthRepository()
		tokens = auth.NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 7*24*time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(mockRepo, tokens, bcrypt.MinCost, logger)
	})

	Describe("Authenticate", func() {
		BeforeEach(func() {
			addUser(1, "carla@mail.com", "secret123", true)
		})

		It("returns a token pair for valid credentials", func() {
			result, err := service.Authenticate(auth.LoginDTO{Email: "carla@mail.com", Password: "secret123"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.AccessToken).ToNot(BeEmpty())
			Expect(result.RefreshToken).ToNot(BeEmpty())
			Expect(mockRepo.lastLogin[1]).To(BeTrue())
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "carla@mail.com", Password: "wrong"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects an unknown email with the same error as a bad password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "nobody@mail.com", Password: "secret123"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects an inactive account even with the right password", func() {
			addUser(2, "inactive@mail.com", "secret123", false)

			_, err := service.Authenticate(auth.LoginDTO{Email: "inactive@mail.com", Password: "secret123"})
			Expect(err).To(MatchError(internal.ErrUserInactive))
		})
	})

	Describe("token validation", func() {
		It("round-trips an access token", func() {
			token, err := tokens.GenerateAccessToken("42", "carla@mail.com")
			Expect(err).ToNot(HaveOccurred())

			claims, err := service.ValidateAccessToken(token)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.UserID).To(Equal("42"))
			Expect(claims.Email).To(Equal("carla@mail.com"))
		})

		It("rejects garbage tokens", func() {
			_, err := service.ValidateAccessToken("not-a-token")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects tokens signed with a different secret", func() {
			other := auth.NewJWTTokenGenerator(
				"another-secret-with-32-characters!!!!!",
				refreshSecret,
				15*time.Minute,
				7*24*time.Hour,
			)
			token, err := other.GenerateAccessToken("42", "carla@mail.com")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("RefreshTokens", func() {
		It("issues a fresh pair from a valid refresh token", func() {
			refresh, err := tokens.GenerateRefreshToken("42", "carla@mail.com")
			Expect(err).ToNot(HaveOccurred())

			pair, err := service.RefreshTokens(refresh)
			Expect(err).ToNot(HaveOccurred())
			Expect(pair.AccessToken).ToNot(BeEmpty())
			Expect(pair.RefreshToken).ToNot(BeEmpty())
		})

		It("rejects an invalid refresh token", func() {
			_, err := service.RefreshTokens("bogus")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})
})
