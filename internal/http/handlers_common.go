package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/academiafit/bff/internal/core"
)

// writeUpstreamError traduz o erro tipado do cliente do core para o status
// e mensagem do app, conforme a tabela de tradução.
func (s *Server) writeUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrUnavailable) {
		s.logger.Error().Err(err).Msg("core inacessível")
		writeError(w, http.StatusInternalServerError, "Erro ao conectar com o servidor")
		return
	}

	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			writeError(w, http.StatusUnauthorized, messageOr(apiErr.Message, "Não autorizado"))
		case apiErr.Status == http.StatusNotFound:
			writeError(w, http.StatusNotFound, messageOr(apiErr.Message, "Recurso não encontrado"))
		case apiErr.Status >= 400 && apiErr.Status < 500:
			writeError(w, http.StatusBadRequest, messageOr(apiErr.Message, "Requisição rejeitada"))
		default:
			s.logger.Error().Int("status", apiErr.Status).Str("message", apiErr.Message).Msg("erro do core")
			writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
		}
		return
	}

	s.logger.Error().Err(err).Msg("erro inesperado do core")
	writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

// idParam lê um parâmetro numérico de rota. Valor não numérico vira 404,
// igual a uma rota inexistente.
func idParam(r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
