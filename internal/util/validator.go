package util

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email inválido")
	}
	return nil
}

// ValidateSenha verifica o comprimento mínimo de senha.
func ValidateSenha(senha string, min int) error {
	if len(senha) < min {
		return errors.New("senha muito curta")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

// ParseDate aceita datas no formato Y-m-d.
func ParseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
