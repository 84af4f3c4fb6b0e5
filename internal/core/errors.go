package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable indica falha de transporte (conexão recusada, timeout).
	ErrUnavailable = errors.New("core backend indisponível")
)

// APIError carrega a rejeição do core backend com status e mensagem originais.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("core backend: status %d", e.Status)
	}
	return e.Message
}

// IsNotFound informa se o erro representa recurso inexistente no core.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

// IsUnauthorized informa se o core rejeitou as credenciais ou o token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Status == 401 || apiErr.Status == 403)
}
