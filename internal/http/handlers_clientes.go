package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/academiafit/bff/internal/http/middleware"
	"github.com/academiafit/bff/internal/mapping"
	"github.com/academiafit/bff/internal/util"
)

type atualizarClienteRequest struct {
	Nome           *string `json:"nome"`
	Telefone       *string `json:"telefone"`
	CPF            *string `json:"cpf"`
	Endereco       *string `json:"endereco"`
	DataNascimento *string `json:"dataNascimento"`
	AvatarDataURL  *string `json:"avatarDataUrl"`
	Senha          *string `json:"senha"`
}

// handleAtualizarCliente faz o ciclo buscar-mesclar-gravar: carrega o
// snapshot atual do core, aplica só os campos enviados e devolve o registro
// completo. username e email são imutáveis e vêm sempre do snapshot.
func (s *Server) handleAtualizarCliente(w http.ResponseWriter, r *http.Request) {
	clienteID, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}

	var req atualizarClienteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	errs := map[string][]string{}
	if req.Nome != nil && (len(*req.Nome) < 3 || len(*req.Nome) > 150) {
		errs["nome"] = append(errs["nome"], "O nome deve ter entre 3 e 150 caracteres")
	}
	if req.Telefone != nil && len(*req.Telefone) > 30 {
		errs["telefone"] = append(errs["telefone"], "O telefone deve ter no máximo 30 caracteres")
	}
	if req.CPF != nil && (len(*req.CPF) < 11 || len(*req.CPF) > 20) {
		errs["cpf"] = append(errs["cpf"], "O CPF deve ter entre 11 e 20 caracteres")
	}
	if req.Endereco != nil && len(*req.Endereco) > 255 {
		errs["endereco"] = append(errs["endereco"], "O endereço deve ter no máximo 255 caracteres")
	}
	if req.DataNascimento != nil {
		nascimento, err := util.ParseDate(*req.DataNascimento)
		if err != nil {
			errs["dataNascimento"] = append(errs["dataNascimento"], "Informe uma data válida (AAAA-MM-DD)")
		} else if !nascimento.Before(time.Now()) {
			errs["dataNascimento"] = append(errs["dataNascimento"], "A data de nascimento deve ser anterior a hoje")
		}
	}
	if req.Senha != nil {
		if err := util.ValidateSenha(*req.Senha, 6); err != nil {
			errs["senha"] = append(errs["senha"], "A senha deve ter no mínimo 6 caracteres")
		}
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	snapshot, err := s.core.GetCliente(r.Context(), clienteID)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	merged := map[string]any{}
	for k, v := range snapshot {
		merged[k] = v
	}
	setIfPresent(merged, "nome", req.Nome)
	setIfPresent(merged, "telefone", req.Telefone)
	setIfPresent(merged, "cpf", req.CPF)
	setIfPresent(merged, "endereco", req.Endereco)
	setIfPresent(merged, "dataNascimento", req.DataNascimento)
	setIfPresent(merged, "avatarDataUrl", req.AvatarDataURL)
	if req.Senha != nil {
		merged["senha"] = *req.Senha
	}
	// Imutáveis: sempre do snapshot, nunca do payload do app.
	merged["username"] = snapshot["username"]
	merged["email"] = snapshot["email"]

	token := middleware.GetToken(r.Context())
	data, err := s.core.AtualizarCliente(r.Context(), clienteID, mapping.RenameFields(merged), token)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, data, "Perfil atualizado com sucesso")
}

func setIfPresent(dst map[string]any, key string, val *string) {
	if val != nil {
		dst[key] = *val
	}
}

type alterarSenhaRequest struct {
	SenhaAtual string `json:"senhaAtual"`
	NovaSenha  string `json:"novaSenha"`
}

func (s *Server) handleAlterarSenha(w http.ResponseWriter, r *http.Request) {
	clienteID, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}

	var req alterarSenhaRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	errs := map[string][]string{}
	if req.SenhaAtual == "" {
		errs["senhaAtual"] = append(errs["senhaAtual"], "A senha atual é obrigatória")
	}
	if err := util.ValidateSenha(req.NovaSenha, 6); err != nil {
		errs["novaSenha"] = append(errs["novaSenha"], "A nova senha deve ter no mínimo 6 caracteres")
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	token := middleware.GetToken(r.Context())
	if err := s.core.AlterarSenha(r.Context(), clienteID, req.SenhaAtual, req.NovaSenha, token); err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Senha alterada com sucesso")
}

// handleAtivarPremium repassa a ativação manual de premium usada em
// desenvolvimento. ativar default true, meses default 1.
func (s *Server) handleAtivarPremium(w http.ResponseWriter, r *http.Request) {
	clienteID, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}

	ativar := true
	if raw := r.URL.Query().Get("ativar"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeValidationError(w, map[string][]string{
				"ativar": {"Valor inválido para ativar"},
			})
			return
		}
		ativar = parsed
	}

	meses := 1
	if raw := r.URL.Query().Get("meses"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeValidationError(w, map[string][]string{
				"meses": {"Valor inválido para meses"},
			})
			return
		}
		meses = parsed
	}

	data, err := s.core.AtivarPremium(r.Context(), clienteID, ativar, meses)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, data, "Premium atualizado com sucesso")
}
