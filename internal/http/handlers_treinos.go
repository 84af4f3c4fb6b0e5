package http

import (
	"fmt"
	"net/http"

	"github.com/academiafit/bff/internal/http/middleware"
	"github.com/academiafit/bff/internal/mapping"
	"github.com/academiafit/bff/internal/util"
)

type criarTreinoRequest struct {
	ClienteID int64  `json:"clienteId"`
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
	Nivel     string `json:"nivel"`
}

func (s *Server) handleListarTreinos(w http.ResponseWriter, r *http.Request) {
	treinos, err := s.core.ListarTreinos(r.Context())
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, treinos, "Treinos listados")
}

func (s *Server) handleGetTreino(w http.ResponseWriter, r *http.Request) {
	treinoID, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Treino não encontrado")
		return
	}

	treino, err := s.core.GetTreino(r.Context(), treinoID)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, treino, "Treino encontrado")
}

func (s *Server) handleListarTreinosDoCliente(w http.ResponseWriter, r *http.Request) {
	clienteID, ok := idParam(r, "clienteId")
	if !ok {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}

	token := middleware.GetToken(r.Context())
	treinos, err := s.core.ListarTreinosPorCliente(r.Context(), clienteID, token)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, treinos, "Treinos do cliente listados")
}

func (s *Server) handleCriarTreino(w http.ResponseWriter, r *http.Request) {
	var req criarTreinoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	errs := map[string][]string{}
	if req.ClienteID <= 0 {
		errs["clienteId"] = append(errs["clienteId"], "O clienteId é obrigatório")
	}
	if err := util.RequireString(req.Titulo, "titulo"); err != nil {
		errs["titulo"] = append(errs["titulo"], "O título é obrigatório")
	}
	if err := util.RequireString(req.Descricao, "descricao"); err != nil {
		errs["descricao"] = append(errs["descricao"], "A descrição é obrigatória")
	}
	if !mapping.OneOf(req.Nivel, mapping.NiveisTreino) {
		errs["nivel"] = append(errs["nivel"], "Nível inválido (INICIANTE, INTERMEDIARIO ou AVANCADO)")
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	payload := map[string]any{
		"clienteId": req.ClienteID,
		"titulo":    req.Titulo,
		"descricao": req.Descricao,
		"nivel":     req.Nivel,
	}

	token := middleware.GetToken(r.Context())
	data, err := s.core.CriarTreino(r.Context(), payload, token)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, data, "Treino criado com sucesso")
}

type registrarFrequenciaRequest struct {
	UsuarioID int64  `json:"usuarioId"`
	Treino    int64  `json:"treino"`
	Duracao   int64  `json:"duracao"`
	Data      string `json:"data"`
	Nivel     string `json:"nivel"`
}

// handleRegistrarFrequencia traduz o registro de frequência do app para um
// treino do core: o número do treino vira o título e data/duração compõem a
// descrição.
func (s *Server) handleRegistrarFrequencia(w http.ResponseWriter, r *http.Request) {
	var req registrarFrequenciaRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	errs := map[string][]string{}
	if req.UsuarioID <= 0 {
		errs["usuarioId"] = append(errs["usuarioId"], "O usuarioId é obrigatório")
	}
	if req.Treino <= 0 {
		errs["treino"] = append(errs["treino"], "O treino é obrigatório")
	}
	if req.Duracao <= 0 {
		errs["duracao"] = append(errs["duracao"], "A duração é obrigatória")
	}
	if req.Data != "" {
		if _, err := util.ParseDate(req.Data); err != nil {
			errs["data"] = append(errs["data"], "Informe uma data válida (AAAA-MM-DD)")
		}
	}
	if req.Nivel != "" && !mapping.OneOf(req.Nivel, mapping.NiveisTreino) {
		errs["nivel"] = append(errs["nivel"], "Nível inválido (INICIANTE, INTERMEDIARIO ou AVANCADO)")
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	nivel := req.Nivel
	if nivel == "" {
		nivel = "INICIANTE"
	}
	descricao := fmt.Sprintf("Frequência registrada: %d minutos", req.Duracao)
	if req.Data != "" {
		descricao = fmt.Sprintf("Frequência registrada em %s: %d minutos", req.Data, req.Duracao)
	}

	payload := map[string]any{
		"clienteId": req.UsuarioID,
		"titulo":    fmt.Sprintf("Treino #%d", req.Treino),
		"descricao": descricao,
		"nivel":     nivel,
	}

	token := middleware.GetToken(r.Context())
	data, err := s.core.CriarTreino(r.Context(), payload, token)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, data, "Frequência registrada com sucesso")
}
