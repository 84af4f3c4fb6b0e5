// Package mapping concentra a tradução de vocabulário entre o frontend e o
// core backend. Toda renomeação de campo e todo mapa de valor legado vive
// aqui, em tabelas declarativas, para que handlers distintos nunca divirjam.
package mapping

// fieldRenames traduz nomes de campo do frontend para o vocabulário do core.
var fieldRenames = map[string]string{
	"senha": "password",
}

// legacyStatusPagamento converte status depreciados do frontend para o
// domínio canônico do core.
var legacyStatusPagamento = map[string]string{
	"PAGO":      "APROVADO",
	"CANCELADO": "FALHOU",
}

// NiveisTreino enumera os níveis aceitos pelo core.
var NiveisTreino = []string{"INICIANTE", "INTERMEDIARIO", "AVANCADO"}

// MetodosPagamento enumera os métodos de pagamento aceitos.
var MetodosPagamento = []string{"CARTAO", "PIX", "BOLETO"}

// StatusPagamento enumera os status aceitos na entrada, incluindo os legados
// que serão convertidos antes do envio ao core.
var StatusPagamento = []string{"PENDENTE", "APROVADO", "FALHOU", "PAGO", "CANCELADO"}

// RenameFields devolve uma cópia do payload com os campos renomeados para o
// vocabulário do core. Campos sem tradução passam intactos.
func RenameFields(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if target, ok := fieldRenames[k]; ok {
			out[target] = v
			continue
		}
		out[k] = v
	}
	return out
}

// CanonicalStatusPagamento traduz status legado para o canônico; valores já
// canônicos passam inalterados.
func CanonicalStatusPagamento(status string) string {
	if canonical, ok := legacyStatusPagamento[status]; ok {
		return canonical
	}
	return status
}

// OneOf informa se o valor pertence à enumeração.
func OneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
