package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/academiafit/bff/internal/http/middleware"
	"github.com/academiafit/bff/internal/service"
	"github.com/academiafit/bff/internal/util"
)

type legacyRegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type legacyLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLegacyRegister cria uma conta local (argon2id + pgx) e abre sessão.
func (s *Server) handleLegacyRegister(w http.ResponseWriter, r *http.Request) {
	var req legacyRegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	errs := map[string][]string{}
	if err := util.RequireString(req.Name, "name"); err != nil {
		errs["name"] = append(errs["name"], "O nome é obrigatório")
	} else if len(req.Name) > 255 {
		errs["name"] = append(errs["name"], "O nome deve ter no máximo 255 caracteres")
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		errs["email"] = append(errs["email"], "Informe um e-mail válido")
	}
	if err := util.ValidateSenha(req.Password, 8); err != nil {
		errs["password"] = append(errs["password"], "A senha deve ter no mínimo 8 caracteres")
	}
	if req.Password != req.PasswordConfirmation {
		errs["password"] = append(errs["password"], "A confirmação de senha não confere")
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	result, err := s.auth.Register(r.Context(), strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeValidationError(w, map[string][]string{
				"email": {"Este e-mail já está em uso"},
			})
			return
		}
		s.logger.Error().Err(err).Msg("falha ao registrar conta local")
		writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	writeSuccess(w, http.StatusCreated, result, "Conta criada com sucesso")
}

func (s *Server) handleLegacyLogin(w http.ResponseWriter, r *http.Request) {
	var req legacyLoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeValidationError(w, map[string][]string{
			"email": {"E-mail e senha são obrigatórios"},
		})
		return
	}

	result, err := s.auth.Login(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Credenciais inválidas")
		case errors.Is(err, service.ErrAccountDisabled):
			writeError(w, http.StatusUnauthorized, "Conta desativada")
		default:
			s.logger.Error().Err(err).Msg("falha no login local")
			writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
		}
		return
	}

	writeSuccess(w, http.StatusOK, result, "Login realizado com sucesso")
}

func (s *Server) handleLegacyLogout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	if err := s.auth.Logout(r.Context(), token); err != nil {
		writeError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Logout realizado com sucesso")
}

func (s *Server) handleLegacyMe(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	profile, err := s.auth.Me(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	writeSuccess(w, http.StatusOK, profile, "Usuário autenticado")
}

func (s *Server) handleLegacyRevokeAll(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	if err := s.auth.RevokeAll(r.Context(), token); err != nil {
		writeError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Todas as sessões foram encerradas")
}
