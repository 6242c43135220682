// Package models содержит структуры данных, общие для всех слоев приложения.
package models

// User описывает учетную запись пользователя Datify.
//
// Email и Username уникальны в пределах таблицы users. Token хранит
// последний выданный JWT: выдача нового токена при логине перезаписывает
// предыдущий, делая его недействительным для /dashboard.
type User struct {
	UID          string  `json:"uid"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Token        *string `json:"-"`
}
