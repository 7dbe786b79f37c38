package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/infrastructure/config"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

var _ identity.UserRepository = (*MockUserRepository)(nil)

func newAuthServiceUnderTest() (*AuthService, *MockUserRepository, *auth.JWTService) {
	repo := new(MockUserRepository)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "labstock-test",
	})
	svc := NewAuthService(repo, jwtService, auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	return svc, repo, jwtService
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers and signs in", func(t *testing.T) {
		svc, repo, _ := newAuthServiceUnderTest()
		repo.On("ExistsByEmail", ctx, "alice@lab.test").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		result, err := svc.Register(ctx, RegisterInput{
			Email:       "alice@lab.test",
			Password:    "correct-horse",
			DisplayName: "Alice",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, "alice@lab.test", result.User.Email)
		assert.False(t, result.User.Anonymous)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, repo, _ := newAuthServiceUnderTest()
		repo.On("ExistsByEmail", ctx, "alice@lab.test").Return(true, nil)

		_, err := svc.Register(ctx, RegisterInput{Email: "alice@lab.test", Password: "correct-horse"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMAIL_TAKEN", domainErr.Code)
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc, repo, _ := newAuthServiceUnderTest()
		repo.On("ExistsByEmail", ctx, "alice@lab.test").Return(false, nil)

		_, err := svc.Register(ctx, RegisterInput{Email: "alice@lab.test", Password: "short"})
		assert.Error(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	newUser := func(t *testing.T) *identity.User {
		t.Helper()
		user, err := identity.NewUser("alice@lab.test", "correct-horse", "Alice")
		require.NoError(t, err)
		user.ClearDomainEvents()
		return user
	}

	t.Run("valid credentials", func(t *testing.T) {
		svc, repo, jwtService := newAuthServiceUnderTest()
		user := newUser(t)
		repo.On("FindByEmail", ctx, "alice@lab.test").Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		result, err := svc.Login(ctx, LoginInput{Email: "alice@lab.test", Password: "correct-horse"})
		require.NoError(t, err)

		claims, err := jwtService.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, "Alice", claims.DisplayName)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, repo, _ := newAuthServiceUnderTest()
		repo.On("FindByEmail", ctx, "alice@lab.test").Return(newUser(t), nil)

		_, err := svc.Login(ctx, LoginInput{Email: "alice@lab.test", Password: "wrong"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	})

	t.Run("unknown email gives the same error", func(t *testing.T) {
		svc, repo, _ := newAuthServiceUnderTest()
		repo.On("FindByEmail", ctx, "nobody@lab.test").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginInput{Email: "nobody@lab.test", Password: "whatever"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	})
}

func TestAuthService_LoginAnonymous(t *testing.T) {
	svc, repo, jwtService := newAuthServiceUnderTest()
	repo.On("Save", mock.Anything, mock.MatchedBy(func(u *identity.User) bool {
		return u.Anonymous && u.Email == ""
	})).Return(nil)

	result, err := svc.LoginAnonymous(context.Background(), AnonymousInput{DisplayName: "Night Shift"})
	require.NoError(t, err)
	assert.True(t, result.User.Anonymous)

	claims, err := jwtService.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.Anonymous)
	assert.Equal(t, "Night Shift", claims.DisplayName)
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newAuthServiceUnderTest()

	user, err := identity.NewUser("alice@lab.test", "correct-horse", "Alice")
	require.NoError(t, err)
	repo.On("FindByEmail", ctx, "alice@lab.test").Return(user, nil)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)

	session, err := svc.Login(ctx, LoginInput{Email: "alice@lab.test", Password: "correct-horse"})
	require.NoError(t, err)

	t.Run("refresh issues a new pair", func(t *testing.T) {
		result, err := svc.Refresh(ctx, RefreshInput{RefreshToken: session.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, user.ID, result.User.ID)
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, session.AccessToken, session.RefreshToken))

		_, err := svc.Refresh(ctx, RefreshInput{RefreshToken: session.RefreshToken})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	})

	t.Run("garbage refresh token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, RefreshInput{RefreshToken: "garbage"})
		assert.Error(t, err)
	})
}
