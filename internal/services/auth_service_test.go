package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/services"
)

const testJWTSecret = "test_jwt_secret"

func notFoundErr() error {
	return errors.Join(errors.New("user not found"), apperrors.ErrNotFound)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

		mockRepo.On("GetByEmail", ctx, "jane@example.com").Return(nil, notFoundErr()).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
			Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = "u1" }).
			Return(nil).Once()

		user, token, err := authService.Register(ctx, " Jane ", "Jane@Example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "Jane", user.Name)
		assert.Equal(t, models.RoleCustomer, user.Role)
		assert.NotEqual(t, "secret1", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))
		assert.NotEmpty(t, token)
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
		mockRepo.On("GetByEmail", ctx, "jane@example.com").Return(&models.User{ID: "u1"}, nil).Once()

		_, _, err := authService.Register(ctx, "Jane", "jane@example.com", "secret1")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("store failure is not masked", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
		mockRepo.On("GetByEmail", ctx, "jane@example.com").Return(nil, errors.New("db down")).Once()

		_, _, err := authService.Register(ctx, "Jane", "jane@example.com", "secret1")
		assert.Error(t, err)
		assert.Equal(t, "internal", apperrors.Code(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	stored := &models.User{ID: "u1", Email: "jane@example.com", Password: string(hashed), Role: models.RoleAdmin}

	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
	mockRepo.On("GetByEmail", ctx, "jane@example.com").Return(stored, nil)
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, notFoundErr())

	user, token, err := authService.Login(ctx, "jane@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["user_id"])
	assert.Equal(t, "admin", claims["role"])

	_, _, err = authService.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, _, err = authService.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, time.Hour)

	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign("other", jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()})},
		{"expired", sign(testJWTSecret, jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(-time.Hour).Unix()})},
		{"no expiry", sign(testJWTSecret, jwt.MapClaims{"user_id": "u1"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.ValidateToken(tt.token)
			assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	alive := &models.User{ID: "u1", Role: models.RoleCustomer}
	gone := &models.User{ID: "u2", Role: models.RoleCustomer}
	mockRepo.On("GetByID", ctx, "u1").Return(alive, nil)
	mockRepo.On("GetByID", ctx, "u2").Return(nil, notFoundErr())

	token, err := authService.IssueToken(alive)
	require.NoError(t, err)
	user, err := authService.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	token, err = authService.IssueToken(gone)
	require.NoError(t, err)
	_, err = authService.Authenticate(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
