package http

import (
	"net/http"

	"github.com/academiafit/bff/internal/mapping"
)

type registrarPagamentoRequest struct {
	ClienteID         int64   `json:"clienteId"`
	Valor             float64 `json:"valor"`
	Metodo            string  `json:"metodo"`
	Status            string  `json:"status"`
	ReferenciaExterna string  `json:"referenciaExterna"`
}

func (s *Server) handleListarPagamentos(w http.ResponseWriter, r *http.Request) {
	pagamentos, err := s.core.ListarPagamentos(r.Context())
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, pagamentos, "Pagamentos listados")
}

func (s *Server) handleGetPagamento(w http.ResponseWriter, r *http.Request) {
	pagamentoID, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Pagamento não encontrado")
		return
	}

	pagamento, err := s.core.GetPagamento(r.Context(), pagamentoID)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, pagamento, "Pagamento encontrado")
}

func (s *Server) handleListarPagamentosDoCliente(w http.ResponseWriter, r *http.Request) {
	clienteID, ok := idParam(r, "clienteId")
	if !ok {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}

	pagamentos, err := s.core.ListarPagamentosPorCliente(r.Context(), clienteID)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, pagamentos, "Pagamentos do cliente listados")
}

// handleRegistrarPagamento aceita status legados (PAGO, CANCELADO) e os
// converte para o domínio canônico antes do envio ao core.
func (s *Server) handleRegistrarPagamento(w http.ResponseWriter, r *http.Request) {
	var req registrarPagamentoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	errs := map[string][]string{}
	if req.ClienteID <= 0 {
		errs["clienteId"] = append(errs["clienteId"], "O clienteId é obrigatório")
	}
	if req.Valor <= 0 {
		errs["valor"] = append(errs["valor"], "O valor deve ser maior que zero")
	}
	if !mapping.OneOf(req.Metodo, mapping.MetodosPagamento) {
		errs["metodo"] = append(errs["metodo"], "Método inválido (CARTAO, PIX ou BOLETO)")
	}
	if !mapping.OneOf(req.Status, mapping.StatusPagamento) {
		errs["status"] = append(errs["status"], "Status inválido")
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	payload := map[string]any{
		"clienteId": req.ClienteID,
		"valor":     req.Valor,
		"metodo":    req.Metodo,
		"status":    mapping.CanonicalStatusPagamento(req.Status),
	}
	if req.ReferenciaExterna != "" {
		payload["referenciaExterna"] = req.ReferenciaExterna
	}

	data, err := s.core.RegistrarPagamento(r.Context(), payload)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, data, "Pagamento registrado com sucesso")
}
