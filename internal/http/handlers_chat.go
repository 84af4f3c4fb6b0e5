package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/academiafit/bff/internal/core"
	"github.com/academiafit/bff/internal/http/middleware"
)

const (
	chatPageDefault = 0
	chatSizeDefault = 50
)

func (s *Server) handleChatConversas(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	conversas, err := s.core.GetChatConversas(r.Context(), token)
	if err != nil {
		s.writeChatReadError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, conversas, "Conversas listadas")
}

func (s *Server) handleChatMensagens(w http.ResponseWriter, r *http.Request) {
	conversaID, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Conversa não encontrada")
		return
	}

	page := queryInt(r, "page", chatPageDefault)
	size := queryInt(r, "size", chatSizeDefault)

	token := middleware.GetToken(r.Context())
	mensagens, err := s.core.GetChatMensagens(r.Context(), token, conversaID, page, size)
	if err != nil {
		s.writeChatReadError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, mensagens, "Mensagens listadas")
}

// handleChatIniciarConversa repassa a abertura de conversa. O core recusa
// quando o usuário não é premium, então a falha vira 400 com a dica.
func (s *Server) handleChatIniciarConversa(w http.ResponseWriter, r *http.Request) {
	outroUsuarioID, ok := idParam(r, "outroUsuarioId")
	if !ok {
		writeError(w, http.StatusNotFound, "Usuário não encontrado")
		return
	}

	token := middleware.GetToken(r.Context())
	conversa, err := s.core.IniciarConversa(r.Context(), token, outroUsuarioID)
	if err != nil {
		if errors.Is(err, core.ErrUnavailable) {
			s.logger.Error().Err(err).Msg("core inacessível ao iniciar conversa")
			writeError(w, http.StatusInternalServerError, "Erro ao conectar com o servidor")
			return
		}
		var apiErr *core.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			writeError(w, http.StatusBadRequest, apiErr.Message)
			return
		}
		writeError(w, http.StatusBadRequest, "Não foi possível iniciar a conversa. O chat é exclusivo para assinantes premium")
		return
	}

	writeSuccess(w, http.StatusOK, conversa, "Conversa iniciada")
}

func (s *Server) handleChatMarcarLidas(w http.ResponseWriter, r *http.Request) {
	conversaID, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Conversa não encontrada")
		return
	}

	token := middleware.GetToken(r.Context())
	if err := s.core.MarcarMensagensComoLidas(r.Context(), token, conversaID); err != nil {
		s.writeChatReadError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "Mensagens marcadas como lidas")
}

func (s *Server) handleChatUsuarios(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	usuarios, err := s.core.GetChatUsuarios(r.Context(), token)
	if err != nil {
		s.writeChatReadError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, usuarios, "Usuários listados")
}

func (s *Server) handleChatUsuariosOnline(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	usuarios, err := s.core.GetChatUsuariosOnline(r.Context(), token)
	if err != nil {
		s.writeChatReadError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, usuarios, "Usuários online listados")
}

// writeChatReadError trata falhas de leitura do chat: qualquer erro do core
// vira 500 genérico, exceto recusa de autenticação.
func (s *Server) writeChatReadError(w http.ResponseWriter, err error) {
	if core.IsUnauthorized(err) {
		writeError(w, http.StatusUnauthorized, "Não autorizado")
		return
	}
	s.logger.Error().Err(err).Msg("falha no chat")
	writeError(w, http.StatusInternalServerError, "Erro ao carregar o chat")
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}
