package http

import (
	"net/http"

	"github.com/academiafit/bff/internal/http/middleware"
)

const treinosRecentesLimite = 5

// handlePerfil agrega em uma resposta o que o app mostra na tela de perfil:
// dados do cliente, os treinos mais recentes e o histórico de pagamentos.
// Sem o cliente não há perfil (404); as coleções degradam para vazio se o
// core falhar nelas.
func (s *Server) handlePerfil(w http.ResponseWriter, r *http.Request) {
	clienteID, ok := idParam(r, "clienteId")
	if !ok {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}

	cliente, err := s.core.GetCliente(r.Context(), clienteID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}

	token := middleware.GetToken(r.Context())

	treinos, err := s.core.ListarTreinosPorCliente(r.Context(), clienteID, token)
	if err != nil {
		s.logger.Warn().Err(err).Int64("cliente_id", clienteID).Msg("treinos indisponíveis no perfil")
		treinos = []map[string]any{}
	}
	if len(treinos) > treinosRecentesLimite {
		treinos = treinos[:treinosRecentesLimite]
	}

	pagamentos, err := s.core.ListarPagamentosPorCliente(r.Context(), clienteID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("cliente_id", clienteID).Msg("pagamentos indisponíveis no perfil")
		pagamentos = []map[string]any{}
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"cliente":             cliente,
		"treinosRecentes":     treinos,
		"historicoPagamentos": pagamentos,
	}, "Perfil carregado")
}
