package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSession é retornado quando a sessão foi revogada ou expirou.
	ErrInvalidSession = errors.New("sessão inválida")
)

// SessionRedisKey monta a chave da sessão identificada pelo jti do token.
// A sessão existe enquanto a chave existir; logout a remove.
func SessionRedisKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

// UserSessionsRedisKey indexa as sessões ativas de um usuário, permitindo
// revogação em massa.
func UserSessionsRedisKey(userID string) string {
	return fmt.Sprintf("sessions:user:%s", userID)
}
