package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/academiafit/bff/internal/core"
	"github.com/academiafit/bff/internal/http/middleware"
	"github.com/academiafit/bff/internal/mapping"
	"github.com/academiafit/bff/internal/util"
)

type cadastroRequest struct {
	Nome           string `json:"nome"`
	Email          string `json:"email"`
	Senha          string `json:"senha"`
	Telefone       string `json:"telefone"`
	CPF            string `json:"cpf"`
	Endereco       string `json:"endereco"`
	DataNascimento string `json:"dataNascimento"`
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// handleCadastro valida e encaminha o cadastro ao core, traduzindo
// senha→password antes do envio.
func (s *Server) handleCadastro(w http.ResponseWriter, r *http.Request) {
	var req cadastroRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	errs := map[string][]string{}
	if err := util.RequireString(req.Nome, "nome"); err != nil {
		errs["nome"] = append(errs["nome"], "O nome é obrigatório")
	} else if len(req.Nome) > 255 {
		errs["nome"] = append(errs["nome"], "O nome deve ter no máximo 255 caracteres")
	}
	if err := util.ValidateEmail(req.Email); err != nil || len(req.Email) > 255 {
		errs["email"] = append(errs["email"], "Informe um e-mail válido")
	}
	if err := util.ValidateSenha(req.Senha, 6); err != nil {
		errs["senha"] = append(errs["senha"], "A senha deve ter no mínimo 6 caracteres")
	}
	if len(req.Telefone) > 30 {
		errs["telefone"] = append(errs["telefone"], "O telefone deve ter no máximo 30 caracteres")
	}
	if len(req.CPF) > 20 {
		errs["cpf"] = append(errs["cpf"], "O CPF deve ter no máximo 20 caracteres")
	}
	if len(req.Endereco) > 255 {
		errs["endereco"] = append(errs["endereco"], "O endereço deve ter no máximo 255 caracteres")
	}
	if req.DataNascimento != "" {
		if _, err := util.ParseDate(req.DataNascimento); err != nil {
			errs["dataNascimento"] = append(errs["dataNascimento"], "Informe uma data válida (AAAA-MM-DD)")
		}
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	payload := map[string]any{
		"nome":  strings.TrimSpace(req.Nome),
		"email": strings.TrimSpace(req.Email),
		"senha": req.Senha,
	}
	if req.Telefone != "" {
		payload["telefone"] = req.Telefone
	}
	if req.CPF != "" {
		payload["cpf"] = req.CPF
	}
	if req.Endereco != "" {
		payload["endereco"] = req.Endereco
	}
	if req.DataNascimento != "" {
		payload["dataNascimento"] = req.DataNascimento
	}

	data, err := s.core.RegistrarUsuario(r.Context(), mapping.RenameFields(payload))
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, authResponseData(data), "Cadastro realizado com sucesso")
}

// handleLogin autentica no core. Qualquer recusa do core vira 401 com
// mensagem fixa; só falha de conexão vira 500.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	errs := map[string][]string{}
	if err := util.ValidateEmail(req.Email); err != nil {
		errs["email"] = append(errs["email"], "Informe um e-mail válido")
	}
	if req.Senha == "" {
		errs["senha"] = append(errs["senha"], "A senha é obrigatória")
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	data, err := s.core.AutenticarUsuario(r.Context(), req.Email, req.Senha)
	if err != nil {
		if errors.Is(err, core.ErrUnavailable) {
			s.logger.Error().Err(err).Msg("core inacessível no login")
			writeError(w, http.StatusInternalServerError, "Erro ao conectar com o servidor")
			return
		}
		writeError(w, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}

	writeSuccess(w, http.StatusOK, authResponseData(data), "Login realizado com sucesso")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	data, err := s.core.ObterUsuarioAutenticado(r.Context(), token)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, data, "Usuário autenticado")
}

func (s *Server) handleValidarToken(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	data, err := s.core.ValidarToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrUnavailable) {
			s.logger.Error().Err(err).Msg("core inacessível na validação de token")
			writeError(w, http.StatusInternalServerError, "Erro ao conectar com o servidor")
			return
		}
		writeError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"valido":  true,
		"usuario": data,
	}, "Token válido")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	if err := s.core.LogoutUsuario(r.Context(), token); err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Logout realizado com sucesso")
}

// authResponseData normaliza a resposta de autenticação do core, tolerando
// as variações de nome de campo entre versões (userId|id, nome|username).
func authResponseData(data map[string]any) map[string]any {
	out := map[string]any{
		"userId": firstPresent(data, "userId", "id"),
		"nome":   firstPresent(data, "nome", "username", "name"),
		"email":  data["email"],
		"token":  firstPresent(data, "token", "accessToken"),
	}
	return out
}

func firstPresent(data map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := data[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
