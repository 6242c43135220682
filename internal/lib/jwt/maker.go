// Package jwt реализует выдачу и проверку подписанных JWT токенов
// с claim-полями email и username.
package jwt

import (
	"errors"
	"time"
)

// Ошибки проверки токена. ErrTokenExpired означает корректную подпись,
// но истекший срок действия; ErrTokenInvalid — все остальное: подделанная
// подпись, поврежденная структура, неожиданный алгоритм.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	// ErrEmptySecret возвращается конструктором: без секретного ключа
	// сервис не должен выдавать проверяемые токены.
	ErrEmptySecret = errors.New("jwt secret key is empty")
)

// Maker описывает интерфейс для выдачи и проверки JWT токенов.
type Maker interface {
	// GenerateToken выдает подписанный токен с claim-полями email и username.
	GenerateToken(email, username string) (string, error)
	// ParseToken проверяет подпись и срок действия, возвращает *CustomClaims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker на HMAC-SHA256 с общим секретом процесса
// и фиксированным временем жизни токена.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewMaker создает MakerImpl. Пустой секрет — фатальная ошибка конфигурации,
// конструктор возвращает ErrEmptySecret.
func NewMaker(secretKey string, ttl time.Duration) (*MakerImpl, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}, nil
}
