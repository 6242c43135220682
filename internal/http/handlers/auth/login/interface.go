package login

import (
	"context"
)

// Service описывает бизнес-логику входа пользователя.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
}
