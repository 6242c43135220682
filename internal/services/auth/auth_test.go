package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/datify-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/datify-auth/internal/lib/password"
	"github.com/magabrotheeeer/datify-auth/internal/models"
	services "github.com/magabrotheeeer/datify-auth/internal/services/auth"
	"github.com/magabrotheeeer/datify-auth/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindUserByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	args := m.Called(ctx, email, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepoMock) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepoMock) FindUserByToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepoMock) UpdateUserToken(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

// Мок для EventPublisher
type EventsMock struct {
	mock.Mock
}

func (m *EventsMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestMaker(t *testing.T, ttl time.Duration) jwt.Maker {
	t.Helper()
	maker, err := jwt.NewMaker("test_secret_key", ttl)
	require.NoError(t, err)
	return maker
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *UserRepoMock, e *EventsMock)
		wantErr    error
	}{
		{
			name: "successful registration",
			setupMocks: func(r *UserRepoMock, e *EventsMock) {
				r.On("FindUserByEmailOrUsername", mock.Anything, "new@example.com", "newUser").
					Return(nil, nil).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "new@example.com" &&
						user.Username == "newUser" &&
						user.UID != "" &&
						user.PasswordHash != "" &&
						user.Token != nil && *user.Token != ""
				})).Return(nil).Once()
				e.On("Publish", "user.registered",
					services.RegisteredEvent{Email: "new@example.com", Username: "newUser"}).
					Return(nil).Once()
			},
			wantErr: nil,
		},
		{
			name: "duplicate email or username",
			setupMocks: func(r *UserRepoMock, _ *EventsMock) {
				r.On("FindUserByEmailOrUsername", mock.Anything, "new@example.com", "newUser").
					Return(&models.User{Username: "newUser"}, nil).Once()
			},
			wantErr: services.ErrUserExists,
		},
		{
			name: "lost insert race maps to duplicate",
			setupMocks: func(r *UserRepoMock, _ *EventsMock) {
				r.On("FindUserByEmailOrUsername", mock.Anything, "new@example.com", "newUser").
					Return(nil, nil).Once()
				r.On("CreateUser", mock.Anything, mock.Anything).
					Return(repository.ErrUserExists).Once()
			},
			wantErr: services.ErrUserExists,
		},
		{
			name: "event publish failure does not fail registration",
			setupMocks: func(r *UserRepoMock, e *EventsMock) {
				r.On("FindUserByEmailOrUsername", mock.Anything, "new@example.com", "newUser").
					Return(nil, nil).Once()
				r.On("CreateUser", mock.Anything, mock.Anything).Return(nil).Once()
				e.On("Publish", mock.Anything, mock.Anything).
					Return(errors.New("amqp connection closed")).Once()
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repoMock := new(UserRepoMock)
			eventsMock := new(EventsMock)
			tt.setupMocks(repoMock, eventsMock)

			service := services.NewAuthService(repoMock, newTestMaker(t, time.Hour), eventsMock, newNoopLogger())

			token, err := service.Register(context.Background(), "newUser", "new@example.com", "password123")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
			}
			repoMock.AssertExpectations(t)
			eventsMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("password123")
	require.NoError(t, err)

	storedUser := &models.User{
		UID:          "uid-1",
		Username:     "newUser",
		Email:        "new@example.com",
		PasswordHash: hash,
	}

	t.Run("successful login issues and persists new token", func(t *testing.T) {
		repoMock := new(UserRepoMock)
		repoMock.On("FindUserByEmail", mock.Anything, "new@example.com").
			Return(storedUser, nil).Once()
		repoMock.On("UpdateUserToken", mock.Anything, "new@example.com",
			mock.MatchedBy(func(token string) bool { return token != "" })).
			Return(nil).Once()

		service := services.NewAuthService(repoMock, newTestMaker(t, time.Hour), nil, newNoopLogger())

		token, err := service.Login(context.Background(), "new@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		repoMock.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		repoMock := new(UserRepoMock)
		repoMock.On("FindUserByEmail", mock.Anything, "nobody@example.com").
			Return(nil, nil).Once()

		service := services.NewAuthService(repoMock, newTestMaker(t, time.Hour), nil, newNoopLogger())

		_, err := service.Login(context.Background(), "nobody@example.com", "password123")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("wrong password gives the same error as unknown email", func(t *testing.T) {
		repoMock := new(UserRepoMock)
		repoMock.On("FindUserByEmail", mock.Anything, "new@example.com").
			Return(storedUser, nil).Once()

		service := services.NewAuthService(repoMock, newTestMaker(t, time.Hour), nil, newNoopLogger())

		_, err := service.Login(context.Background(), "new@example.com", "wrong")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		repoMock.AssertNotCalled(t, "UpdateUserToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store error is not invalid credentials", func(t *testing.T) {
		repoMock := new(UserRepoMock)
		repoMock.On("FindUserByEmail", mock.Anything, "new@example.com").
			Return(nil, errors.New("connection refused")).Once()

		service := services.NewAuthService(repoMock, newTestMaker(t, time.Hour), nil, newNoopLogger())

		_, err := service.Login(context.Background(), "new@example.com", "password123")
		require.Error(t, err)
		assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
	})
}

func TestAuthService_Dashboard(t *testing.T) {
	maker := newTestMaker(t, time.Hour)
	token, err := maker.GenerateToken("new@example.com", "newUser")
	require.NoError(t, err)

	user := &models.User{Username: "newUser", Email: "new@example.com", Token: &token}

	t.Run("valid bearer token", func(t *testing.T) {
		repoMock := new(UserRepoMock)
		repoMock.On("FindUserByToken", mock.Anything, token).Return(user, nil).Once()

		service := services.NewAuthService(repoMock, maker, nil, newNoopLogger())

		username, err := service.Dashboard(context.Background(), "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, "newUser", username)
	})

	t.Run("raw header without bearer prefix is treated as the token", func(t *testing.T) {
		repoMock := new(UserRepoMock)
		repoMock.On("FindUserByToken", mock.Anything, token).Return(user, nil).Once()

		service := services.NewAuthService(repoMock, maker, nil, newNoopLogger())

		username, err := service.Dashboard(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "newUser", username)
	})

	t.Run("missing header", func(t *testing.T) {
		service := services.NewAuthService(new(UserRepoMock), maker, nil, newNoopLogger())

		_, err := service.Dashboard(context.Background(), "")
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	})

	t.Run("tampered token never reaches the store", func(t *testing.T) {
		repoMock := new(UserRepoMock)
		service := services.NewAuthService(repoMock, maker, nil, newNoopLogger())

		tampered := token[:len(token)-5] + "XXXXX"
		_, err := service.Dashboard(context.Background(), "Bearer "+tampered)
		assert.ErrorIs(t, err, services.ErrUnauthorized)
		repoMock.AssertNotCalled(t, "FindUserByToken", mock.Anything, mock.Anything)
	})

	t.Run("expired token", func(t *testing.T) {
		expiredMaker := newTestMaker(t, -time.Minute)
		expired, err := expiredMaker.GenerateToken("new@example.com", "newUser")
		require.NoError(t, err)

		service := services.NewAuthService(new(UserRepoMock), expiredMaker, nil, newNoopLogger())

		_, err = service.Dashboard(context.Background(), "Bearer "+expired)
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	})

	t.Run("superseded token is rejected while still unexpired", func(t *testing.T) {
		repoMock := new(UserRepoMock)
		// токен криптографически валиден, но в базе его уже перезаписал
		// более поздний логин
		repoMock.On("FindUserByToken", mock.Anything, token).Return(nil, nil).Once()

		service := services.NewAuthService(repoMock, maker, nil, newNoopLogger())

		_, err := service.Dashboard(context.Background(), "Bearer "+token)
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	})
}
