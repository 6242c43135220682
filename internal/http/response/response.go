// Package response содержит вспомогательные типы и функции для формирования
// JSON-ответов HTTP-обработчиков в формате протокола API:
// тело ошибки — плоский объект {"error": "..."}.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// ErrorResponse — стандартное тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error" example:"Unauthorized"`
}

// Error возвращает тело ответа с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Error: msg,
	}
}

// ValidationError формирует тело ошибки на основе нарушений валидации.
// Каждое нарушение превращается в человеко-читаемый текст, тексты
// объединяются через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return ErrorResponse{
		Error: strings.Join(errsMsgs, ", "),
	}
}
