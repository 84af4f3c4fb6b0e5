package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

// ContextKeyToken guarda o bearer token cru recebido na requisição.
const ContextKeyToken contextKey = "token"

// BearerToken extrai o token do header Authorization. Aceita o prefixo
// "Bearer " e, por compatibilidade com clientes antigos, o header cru.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// RequireBearer exige apenas a presença do token, sem validar localmente.
// Nas rotas /bff/* a validade é conferida pelo core na chamada encaminhada;
// nas rotas legadas o handler valida a sessão via serviço.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"data":    nil,
				"message": "Token não fornecido",
			})
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetToken recupera o bearer token do contexto.
func GetToken(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyToken).(string)
	return val
}
