package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/fraudsight/transaction-service/internal/errors"
	"github.com/fraudsight/transaction-service/internal/middleware"
	"github.com/fraudsight/transaction-service/internal/models"
)

func TestRegister(t *testing.T) {
	svc, _, _, _ := newTestService()

	user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cretpass", "")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleCustomer, user.Role, "role defaults to customer")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cretpass")))
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "alice@example.com", "s3cretpass", "")
	assert.True(t, apperrors.IsValidationError(err))

	_, err = svc.Register(ctx, "Alice", "alice@example.com", "short", "")
	assert.True(t, apperrors.IsValidationError(err))

	_, err = svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass", "superuser")
	assert.True(t, apperrors.IsValidationError(err))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Alice", "alice@example.com", "s3cretpass", "")
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass", models.RoleAdmin)
	require.NoError(t, err)

	tokenString, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	claims := &middleware.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	assert.Equal(t, registered.ID, claims.ID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrongpass")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "s3cretpass")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
