package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"linkly/internal/apperrors"
	"linkly/internal/entities"
	"linkly/internal/jwt"
	"linkly/internal/models"
	"linkly/internal/repository"
	"linkly/internal/repository/mocks"
)

func newAuthService(t *testing.T) (AuthService, *mocks.MockUserRepository, *jwt.JWTService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	tokens := jwt.NewJWTService("test-secret", time.Hour)
	return NewAuthService(repo, tokens), repo, tokens
}

func TestAuthService_Register(t *testing.T) {
	svc, repo, tokens := newAuthService(t)
	created := &entities.User{ID: "user-1", Email: "jane@example.com", CreatedAt: time.Now()}

	repo.EXPECT().
		Create(gomock.Any(), "jane@example.com", gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, _ string, hash string, _ *string) (*entities.User, error) {
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret!")))
			return created, nil
		})

	resp, err := svc.Register(context.Background(), &models.RegisterRequest{Email: " Jane@Example.com ", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.UserID)

	claims, err := tokens.ValidateToken(resp.User.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, repo, _ := newAuthService(t)
	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, repository.ErrEmailTaken)

	_, err := svc.Register(context.Background(), &models.RegisterRequest{Email: "jane@example.com", Password: "s3cret!"})
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &entities.User{ID: "user-1", Email: "jane@example.com", PasswordHash: string(hash)}

	t.Run("success", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(user, nil)

		resp, err := svc.Login(context.Background(), &models.LoginRequest{Email: "jane@example.com", Password: "right-password"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(user, nil)

		_, err := svc.Login(context.Background(), &models.LoginRequest{Email: "jane@example.com", Password: "nope"})
		assert.Equal(t, 401, apperrors.HTTPStatus(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		repo.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").
			Return(nil, fmt.Errorf("user ghost@example.com: %w", apperrors.ErrNotFound))

		_, err := svc.Login(context.Background(), &models.LoginRequest{Email: "ghost@example.com", Password: "x"})
		assert.Equal(t, 401, apperrors.HTTPStatus(err))
	})
}

func TestAuthService_Me(t *testing.T) {
	svc, repo, _ := newAuthService(t)
	repo.EXPECT().FindByID(gomock.Any(), "user-1").Return(&entities.User{ID: "user-1", Email: "jane@example.com"}, nil)

	resp, err := svc.Me(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", resp.Email)
	assert.Empty(t, resp.Token)
}
