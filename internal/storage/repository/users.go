package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/datify-auth/internal/models"
)

const userColumns = `uid, username, email, password_hash, token`

// CreateUser сохраняет нового пользователя.
//
// Нарушение уникальности email или username транслируется в ErrUserExists:
// ограничения таблицы — единственный арбитр для конкурентных регистраций.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, username, email, password_hash, token)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Username, user.Email, user.PasswordHash, user.Token)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindUserByEmailOrUsername возвращает пользователя, у которого совпадает
// email или username, либо (nil, nil), если такого нет.
func (s *Storage) FindUserByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	const op = "storage.FindUserByEmailOrUsername"
	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1 OR username = $2`
	return s.findOne(ctx, op, query, email, username)
}

// FindUserByEmail возвращает пользователя по email либо (nil, nil).
func (s *Storage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.FindUserByEmail"
	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	return s.findOne(ctx, op, query, email)
}

// FindUserByToken возвращает пользователя, чей текущий токен равен token,
// либо (nil, nil). Токен, перезаписанный более поздним логином, не найдет
// владельца, даже если срок его действия не истек.
func (s *Storage) FindUserByToken(ctx context.Context, token string) (*models.User, error) {
	const op = "storage.FindUserByToken"
	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE token = $1`
	return s.findOne(ctx, op, query, token)
}

// UpdateUserToken перезаписывает текущий токен пользователя по email.
func (s *Storage) UpdateUserToken(ctx context.Context, email, token string) error {
	const op = "storage.UpdateUserToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET token = $1 WHERE email = $2`
	_, err := s.DB.ExecContext(ctx, query, token, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) findOne(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u := &models.User{}
	var token sql.NullString
	row := s.DB.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.PasswordHash, &token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if token.Valid {
		u.Token = &token.String
	}
	return u, nil
}
