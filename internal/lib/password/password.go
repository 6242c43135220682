// Package password реализует хеширование и проверку паролей на bcrypt.
//
// GetHash создает соленый bcrypt-хеш для хранения в базе данных.
// CompareHash проверяет соответствие пароля хешу, различая неверный
// пароль и внутреннюю ошибку сравнения.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch возвращается, когда пароль не соответствует хешу.
// Любая другая ошибка CompareHash означает сбой самой проверки.
var ErrMismatch = errors.New("password does not match hash")

// GetHash принимает пароль пользователя и возвращает его bcrypt-хэш
// со стандартной стоимостью (cost 10).
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt-хэш с введенным паролем.
//
// Возвращает nil при совпадении, ErrMismatch при неверном пароле и
// обернутую ошибку при сбое bcrypt (например, поврежденный хеш).
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return fmt.Errorf("%s: %w", op, err)
}
