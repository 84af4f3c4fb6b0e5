package http

import (
	"errors"
	"net/http"

	"github.com/academiafit/bff/internal/core"
	"github.com/academiafit/bff/internal/http/middleware"
)

// handleCheckoutPremium abre a sessão de pagamento no core em nome do
// usuário autenticado.
func (s *Server) handleCheckoutPremium(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	data, err := s.core.CriarCheckoutPremium(r.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrUnavailable) {
			s.logger.Error().Err(err).Msg("core inacessível no checkout premium")
			writeError(w, http.StatusInternalServerError, "Erro ao conectar com o servidor")
			return
		}
		if core.IsUnauthorized(err) {
			writeError(w, http.StatusUnauthorized, "Não autorizado")
			return
		}
		writeError(w, http.StatusBadRequest, "Não foi possível iniciar o checkout")
		return
	}

	writeSuccess(w, http.StatusOK, data, "Checkout criado com sucesso")
}

// handleWebhookPremium repassa a notificação do provedor de pagamento ao
// core sem verificar a assinatura: o segredo e a validação vivem no core,
// o BFF só transporta o header e a query intactos.
func (s *Server) handleWebhookPremium(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	signature := r.Header.Get("X-Webhook-Signature")
	webhookSecret := r.URL.Query().Get("webhookSecret")

	if err := s.core.ProcessarWebhookPremium(r.Context(), payload, signature, webhookSecret); err != nil {
		if errors.Is(err, core.ErrUnavailable) {
			s.logger.Error().Err(err).Msg("core inacessível no webhook premium")
			writeError(w, http.StatusInternalServerError, "Erro ao conectar com o servidor")
			return
		}
		writeError(w, http.StatusBadRequest, "Webhook rejeitado")
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Webhook processado")
}
