// Package services содержит бизнес-логику регистрации, входа
// и доступа к защищенным ресурсам.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/datify-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/datify-auth/internal/lib/password"
	"github.com/magabrotheeeer/datify-auth/internal/lib/sl"
	"github.com/magabrotheeeer/datify-auth/internal/models"
	"github.com/magabrotheeeer/datify-auth/internal/storage/repository"
)

// Ошибки уровня бизнес-логики. Каждая намеренно не уточняет, какая именно
// проверка не прошла: ErrInvalidCredentials одинакова для неизвестного
// email и неверного пароля, ErrUnauthorized — для отсутствующего заголовка,
// сломанной подписи, истекшего и вытесненного токена.
var (
	ErrUserExists         = errors.New("email or username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
// Методы поиска возвращают (nil, nil), если пользователь не найден.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя; при нарушении уникальности
	// email или username возвращает repository.ErrUserExists.
	CreateUser(ctx context.Context, user models.User) error

	// FindUserByEmailOrUsername возвращает пользователя с совпадающим
	// email или username.
	FindUserByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)

	// FindUserByEmail возвращает пользователя по email.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	// FindUserByToken возвращает пользователя по его текущему токену.
	FindUserByToken(ctx context.Context, token string) (*models.User, error)

	// UpdateUserToken перезаписывает текущий токен пользователя.
	UpdateUserToken(ctx context.Context, email, token string) error
}

// EventPublisher публикует события аутентификации для внешних потребителей.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// RegisteredEvent — сообщение о новой регистрации для очереди приветствий.
type RegisteredEvent struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// AuthService отвечает за регистрацию, вход и проверку токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	events   EventPublisher
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
// events может быть nil — тогда события регистрации не публикуются.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, events EventPublisher, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		events:   events,
		log:      log,
	}
}

// Register создает нового пользователя и возвращает выданный токен.
//
// Совпадение email или username с существующим пользователем дает
// ErrUserExists. Гонку двух одновременных регистраций разрешает база:
// проигравшая вставка также вернет ErrUserExists.
func (s *AuthService) Register(ctx context.Context, username, email, rawPassword string) (string, error) {
	const op = "services.auth.Register"

	existing, err := s.users.FindUserByEmailOrUsername(ctx, email, username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return "", ErrUserExists
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(email, username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		UID:          uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Token:        &token,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.publishRegistered(email, username)

	return token, nil
}

// Login проверяет email и пароль и выдает новый токен, перезаписывая
// предыдущий: у пользователя действителен только последний выданный токен.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(email, user.Username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdateUserToken(ctx, email, token); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Dashboard проверяет заголовок Authorization и возвращает username
// владельца токена.
//
// Заголовок разбирается как "Bearer <token>"; без префикса Bearer токеном
// считается весь заголовок. Любой отказ — отсутствующий заголовок, плохая
// подпись, истекший срок, токен, вытесненный более поздним логином, —
// сводится к одному ErrUnauthorized.
func (s *AuthService) Dashboard(ctx context.Context, authHeader string) (string, error) {
	const op = "services.auth.Dashboard"

	if authHeader == "" {
		return "", ErrUnauthorized
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	if _, err := s.jwtMaker.ParseToken(token); err != nil {
		return "", ErrUnauthorized
	}

	user, err := s.users.FindUserByToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return "", ErrUnauthorized
	}

	return user.Username, nil
}

func (s *AuthService) publishRegistered(email, username string) {
	if s.events == nil {
		return
	}
	event := RegisteredEvent{Email: email, Username: username}
	if err := s.events.Publish("user.registered", event); err != nil {
		// публикация события не должна ломать регистрацию
		s.log.Error("failed to publish user.registered event", sl.Err(err))
	}
}
