package http

import (
	"encoding/json"
	"net/http"
)

// Envelope é o corpo padrão de toda resposta do BFF. O campo data está
// sempre presente (null em erro); errors só aparece em falha de validação.
type Envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// writeSuccess responde com success=true e os dados fornecidos.
func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

// writeError responde com success=false, data=null e a mensagem dada.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Data: nil, Message: message})
}

// writeValidationError responde 422 com o mapa de erros por campo.
func writeValidationError(w http.ResponseWriter, errors map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, Envelope{
		Success: false,
		Data:    nil,
		Message: "Dados inválidos",
		Errors:  errors,
	})
}

// decodeBody decodifica o JSON da requisição em dst. Corpo vazio é erro.
func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
