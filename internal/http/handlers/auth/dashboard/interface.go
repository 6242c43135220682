package dashboard

import (
	"context"
)

// Service описывает проверку токена и поиск его владельца.
type Service interface {
	Dashboard(ctx context.Context, authHeader string) (string, error)
}
