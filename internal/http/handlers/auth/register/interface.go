package register

import (
	"context"
)

// Service описывает бизнес-логику регистрации пользователя.
type Service interface {
	Register(ctx context.Context, username, email, password string) (string, error)
}
