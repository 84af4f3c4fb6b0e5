package repo

import (
	"time"

	"github.com/google/uuid"
)

// Usuario representa uma conta local do esquema de autenticação legado.
// Contas criadas via /bff/auth vivem no core backend, não aqui.
type Usuario struct {
	ID        uuid.UUID
	Nome      string
	Email     string
	SenhaHash string
	Ativo     bool
	CriadoEm  time.Time
}
