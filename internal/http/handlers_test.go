package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/academiafit/bff/internal/config"
	"github.com/academiafit/bff/internal/core"
)

// stubCore registra as operações chamadas e delega para os hooks definidos
// pelo teste. Sem hook, devolve vazio com sucesso.
type stubCore struct {
	calls []string

	registrarUsuario     func(dados map[string]any) (map[string]any, error)
	autenticarUsuario    func(user, senha string) (map[string]any, error)
	getCliente           func(id int64) (map[string]any, error)
	atualizarCliente     func(id int64, dados map[string]any) (map[string]any, error)
	getTreino            func(id int64) (map[string]any, error)
	listarTreinosCliente func(id int64) ([]map[string]any, error)
	listarPagamentosCli  func(id int64) ([]map[string]any, error)
	criarTreino          func(dados map[string]any) (map[string]any, error)
	registrarPagamento   func(dados map[string]any) (map[string]any, error)
	processarWebhook     func(payload map[string]any, signature, secret string) error
	criarCheckoutPremium func(token string) (map[string]any, error)
	iniciarConversa      func(outroID int64) (map[string]any, error)
}

func (s *stubCore) record(op string) { s.calls = append(s.calls, op) }

func (s *stubCore) RegistrarUsuario(_ context.Context, dados map[string]any) (map[string]any, error) {
	s.record("RegistrarUsuario")
	if s.registrarUsuario != nil {
		return s.registrarUsuario(dados)
	}
	return map[string]any{}, nil
}

func (s *stubCore) AutenticarUsuario(_ context.Context, user, senha string) (map[string]any, error) {
	s.record("AutenticarUsuario")
	if s.autenticarUsuario != nil {
		return s.autenticarUsuario(user, senha)
	}
	return map[string]any{}, nil
}

func (s *stubCore) ValidarToken(_ context.Context, token string) (map[string]any, error) {
	s.record("ValidarToken")
	return map[string]any{}, nil
}

func (s *stubCore) ObterUsuarioAutenticado(_ context.Context, token string) (map[string]any, error) {
	s.record("ObterUsuarioAutenticado")
	return map[string]any{}, nil
}

func (s *stubCore) LogoutUsuario(_ context.Context, token string) error {
	s.record("LogoutUsuario")
	return nil
}

func (s *stubCore) GetCliente(_ context.Context, id int64) (map[string]any, error) {
	s.record("GetCliente")
	if s.getCliente != nil {
		return s.getCliente(id)
	}
	return map[string]any{}, nil
}

func (s *stubCore) AtualizarCliente(_ context.Context, id int64, dados map[string]any, token string) (map[string]any, error) {
	s.record("AtualizarCliente")
	if s.atualizarCliente != nil {
		return s.atualizarCliente(id, dados)
	}
	return map[string]any{}, nil
}

func (s *stubCore) AlterarSenha(_ context.Context, id int64, senhaAtual, novaSenha, token string) error {
	s.record("AlterarSenha")
	return nil
}

func (s *stubCore) AtivarPremium(_ context.Context, id int64, ativar bool, meses int) (map[string]any, error) {
	s.record("AtivarPremium")
	return map[string]any{}, nil
}

func (s *stubCore) GetTreino(_ context.Context, id int64) (map[string]any, error) {
	s.record("GetTreino")
	if s.getTreino != nil {
		return s.getTreino(id)
	}
	return map[string]any{}, nil
}

func (s *stubCore) ListarTreinos(_ context.Context) ([]map[string]any, error) {
	s.record("ListarTreinos")
	return []map[string]any{}, nil
}

func (s *stubCore) ListarTreinosPorCliente(_ context.Context, id int64, token string) ([]map[string]any, error) {
	s.record("ListarTreinosPorCliente")
	if s.listarTreinosCliente != nil {
		return s.listarTreinosCliente(id)
	}
	return []map[string]any{}, nil
}

func (s *stubCore) CriarTreino(_ context.Context, dados map[string]any, token string) (map[string]any, error) {
	s.record("CriarTreino")
	if s.criarTreino != nil {
		return s.criarTreino(dados)
	}
	return map[string]any{}, nil
}

func (s *stubCore) GetPagamento(_ context.Context, id int64) (map[string]any, error) {
	s.record("GetPagamento")
	return map[string]any{}, nil
}

func (s *stubCore) ListarPagamentos(_ context.Context) ([]map[string]any, error) {
	s.record("ListarPagamentos")
	return []map[string]any{}, nil
}

func (s *stubCore) ListarPagamentosPorCliente(_ context.Context, id int64) ([]map[string]any, error) {
	s.record("ListarPagamentosPorCliente")
	if s.listarPagamentosCli != nil {
		return s.listarPagamentosCli(id)
	}
	return []map[string]any{}, nil
}

func (s *stubCore) RegistrarPagamento(_ context.Context, dados map[string]any) (map[string]any, error) {
	s.record("RegistrarPagamento")
	if s.registrarPagamento != nil {
		return s.registrarPagamento(dados)
	}
	return map[string]any{}, nil
}

func (s *stubCore) CriarCheckoutPremium(_ context.Context, token string) (map[string]any, error) {
	s.record("CriarCheckoutPremium")
	if s.criarCheckoutPremium != nil {
		return s.criarCheckoutPremium(token)
	}
	return map[string]any{}, nil
}

func (s *stubCore) ProcessarWebhookPremium(_ context.Context, payload map[string]any, signature, secret string) error {
	s.record("ProcessarWebhookPremium")
	if s.processarWebhook != nil {
		return s.processarWebhook(payload, signature, secret)
	}
	return nil
}

func (s *stubCore) GetChatConversas(_ context.Context, token string) ([]map[string]any, error) {
	s.record("GetChatConversas")
	return []map[string]any{}, nil
}

func (s *stubCore) GetChatMensagens(_ context.Context, token string, conversaID int64, page, size int) ([]map[string]any, error) {
	s.record("GetChatMensagens")
	return []map[string]any{}, nil
}

func (s *stubCore) IniciarConversa(_ context.Context, token string, outroID int64) (map[string]any, error) {
	s.record("IniciarConversa")
	if s.iniciarConversa != nil {
		return s.iniciarConversa(outroID)
	}
	return map[string]any{}, nil
}

func (s *stubCore) MarcarMensagensComoLidas(_ context.Context, token string, conversaID int64) error {
	s.record("MarcarMensagensComoLidas")
	return nil
}

func (s *stubCore) GetChatUsuarios(_ context.Context, token string) ([]map[string]any, error) {
	s.record("GetChatUsuarios")
	return []map[string]any{}, nil
}

func (s *stubCore) GetChatUsuariosOnline(_ context.Context, token string) ([]map[string]any, error) {
	s.record("GetChatUsuariosOnline")
	return []map[string]any{}, nil
}

func newTestRouter(stub *stubCore) http.Handler {
	server := NewServer(stub, nil, zerolog.Nop())
	return server.Router(config.Config{
		RateLimitPublic: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		RateLimitAuth:   config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("resposta não é o envelope padrão: %v (%s)", err, rec.Body.String())
	}
	return rec, env
}

func TestCadastroTraduzSenhaParaPassword(t *testing.T) {
	var recebido map[string]any
	stub := &stubCore{
		registrarUsuario: func(dados map[string]any) (map[string]any, error) {
			recebido = dados
			return map[string]any{"userId": 9, "nome": "Maria", "email": "maria@fit.com", "token": "tok"}, nil
		},
	}
	router := newTestRouter(stub)

	rec, env := doJSON(t, router, http.MethodPost, "/bff/auth/cadastro", "", map[string]any{
		"nome":  "Maria",
		"email": "maria@fit.com",
		"senha": "segredo1",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, esperava 201", rec.Code)
	}
	if !env.Success {
		t.Fatal("success deveria ser true")
	}
	if _, tem := recebido["senha"]; tem {
		t.Error("campo 'senha' não pode chegar ao core")
	}
	if recebido["password"] != "segredo1" {
		t.Errorf("password = %v", recebido["password"])
	}
}

func TestCadastroRelayaMensagemDoCore(t *testing.T) {
	stub := &stubCore{
		registrarUsuario: func(dados map[string]any) (map[string]any, error) {
			return nil, &core.APIError{Status: http.StatusConflict, Message: "Email já está em uso"}
		},
	}
	router := newTestRouter(stub)

	rec, env := doJSON(t, router, http.MethodPost, "/bff/auth/cadastro", "", map[string]any{
		"nome":  "Maria",
		"email": "maria@fit.com",
		"senha": "segredo1",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, esperava 400", rec.Code)
	}
	if env.Message != "Email já está em uso" {
		t.Fatalf("message = %q, esperava relay literal da mensagem do core", env.Message)
	}
}

func TestCadastroValidacaoLocal(t *testing.T) {
	stub := &stubCore{}
	router := newTestRouter(stub)

	rec, env := doJSON(t, router, http.MethodPost, "/bff/auth/cadastro", "", map[string]any{
		"email": "nao-eh-email",
		"senha": "123",
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, esperava 422", rec.Code)
	}
	for _, campo := range []string{"nome", "email", "senha"} {
		if len(env.Errors[campo]) == 0 {
			t.Errorf("esperava erro no campo %q", campo)
		}
	}
	if len(stub.calls) != 0 {
		t.Fatalf("validação local falhou mas o core foi chamado: %v", stub.calls)
	}
}

func TestCadastroCoreIndisponivel(t *testing.T) {
	stub := &stubCore{
		registrarUsuario: func(dados map[string]any) (map[string]any, error) {
			return nil, core.ErrUnavailable
		},
	}
	router := newTestRouter(stub)

	rec, env := doJSON(t, router, http.MethodPost, "/bff/auth/cadastro", "", map[string]any{
		"nome":  "Maria",
		"email": "maria@fit.com",
		"senha": "segredo1",
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, esperava 500", rec.Code)
	}
	if env.Success {
		t.Fatal("success deveria ser false")
	}
}

func TestLoginRecusadoVira401(t *testing.T) {
	stub := &stubCore{
		autenticarUsuario: func(user, senha string) (map[string]any, error) {
			return nil, &core.APIError{Status: http.StatusForbidden, Message: "bad credentials"}
		},
	}
	router := newTestRouter(stub)

	rec, env := doJSON(t, router, http.MethodPost, "/bff/auth/login", "", map[string]any{
		"email": "maria@fit.com",
		"senha": "errada",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperava 401", rec.Code)
	}
	if env.Message != "Credenciais inválidas" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestSemTokenNaoChamaOCore(t *testing.T) {
	stub := &stubCore{}
	router := newTestRouter(stub)

	rotas := []struct {
		method, path string
	}{
		{http.MethodGet, "/bff/treinos/"},
		{http.MethodGet, "/bff/perfil/1"},
		{http.MethodGet, "/bff/chat/conversas"},
		{http.MethodPost, "/bff/premium/checkout"},
	}

	for _, rota := range rotas {
		t.Run(rota.path, func(t *testing.T) {
			rec, env := doJSON(t, router, rota.method, rota.path, "", nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, esperava 401", rec.Code)
			}
			if env.Success {
				t.Fatal("success deveria ser false")
			}
		})
	}

	if len(stub.calls) != 0 {
		t.Fatalf("sem token o core não pode ser chamado, mas houve: %v", stub.calls)
	}
}

func TestPerfilAgregaELimitaTreinos(t *testing.T) {
	treinos := []map[string]any{
		{"id": float64(1)}, {"id": float64(2)}, {"id": float64(3)},
		{"id": float64(4)}, {"id": float64(5)}, {"id": float64(6)},
	}
	stub := &stubCore{
		getCliente: func(id int64) (map[string]any, error) {
			return map[string]any{"id": float64(id), "nome": "Maria"}, nil
		},
		listarTreinosCliente: func(id int64) ([]map[string]any, error) {
			return treinos, nil
		},
		listarPagamentosCli: func(id int64) ([]map[string]any, error) {
			return []map[string]any{{"id": float64(10)}, {"id": float64(11)}}, nil
		},
	}
	router := newTestRouter(stub)

	rec, env := doJSON(t, router, http.MethodGet, "/bff/perfil/1", "tok", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	data := env.Data.(map[string]any)
	recentes := data["treinosRecentes"].([]any)
	if len(recentes) != 5 {
		t.Fatalf("treinosRecentes = %d, esperava 5", len(recentes))
	}
	for i, item := range recentes {
		id := item.(map[string]any)["id"].(float64)
		if int(id) != i+1 {
			t.Fatalf("ordem do core não preservada: posição %d tem id %v", i, id)
		}
	}
	pagamentos := data["historicoPagamentos"].([]any)
	if len(pagamentos) != 2 {
		t.Fatalf("historicoPagamentos = %d, esperava 2", len(pagamentos))
	}
}

func TestPerfilSemCliente404(t *testing.T) {
	stub := &stubCore{
		getCliente: func(id int64) (map[string]any, error) {
			return nil, &core.APIError{Status: http.StatusNotFound, Message: "não existe"}
		},
	}
	router := newTestRouter(stub)

	rec, _ := doJSON(t, router, http.MethodGet, "/bff/perfil/77", "tok", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, esperava 404", rec.Code)
	}

	for _, op := range stub.calls {
		if op == "ListarTreinosPorCliente" || op == "ListarPagamentosPorCliente" {
			t.Fatalf("sem cliente a agregação deve parar, mas houve %v", stub.calls)
		}
	}
}

func TestPerfilDegradaColecoesParaVazio(t *testing.T) {
	stub := &stubCore{
		getCliente: func(id int64) (map[string]any, error) {
			return map[string]any{"id": float64(id)}, nil
		},
		listarTreinosCliente: func(id int64) ([]map[string]any, error) {
			return nil, core.ErrUnavailable
		},
		listarPagamentosCli: func(id int64) ([]map[string]any, error) {
			return nil, core.ErrUnavailable
		},
	}
	router := newTestRouter(stub)

	rec, env := doJSON(t, router, http.MethodGet, "/bff/perfil/1", "tok", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, coleções falhas não podem derrubar o perfil", rec.Code)
	}

	data := env.Data.(map[string]any)
	if len(data["treinosRecentes"].([]any)) != 0 {
		t.Fatal("treinosRecentes deveria ser vazio")
	}
	if len(data["historicoPagamentos"].([]any)) != 0 {
		t.Fatal("historicoPagamentos deveria ser vazio")
	}
}

func TestPagamentoLegadoPagoViraAprovado(t *testing.T) {
	var recebido map[string]any
	stub := &stubCore{
		registrarPagamento: func(dados map[string]any) (map[string]any, error) {
			recebido = dados
			return map[string]any{"id": 50, "status": "APROVADO"}, nil
		},
	}
	router := newTestRouter(stub)

	rec, env := doJSON(t, router, http.MethodPost, "/bff/pagamentos/", "tok", map[string]any{
		"clienteId": 1,
		"valor":     99.9,
		"metodo":    "PIX",
		"status":    "PAGO",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, esperava 201", rec.Code)
	}
	if !env.Success {
		t.Fatal("success deveria ser true")
	}
	if recebido["status"] != "APROVADO" {
		t.Fatalf("status enviado ao core = %v, esperava APROVADO", recebido["status"])
	}
}

func TestFrequenciaViraTreino(t *testing.T) {
	var recebido map[string]any
	stub := &stubCore{
		criarTreino: func(dados map[string]any) (map[string]any, error) {
			recebido = dados
			return map[string]any{"id": 1}, nil
		},
	}
	router := newTestRouter(stub)

	rec, _ := doJSON(t, router, http.MethodPost, "/bff/frequencias", "tok", map[string]any{
		"usuarioId": 3,
		"treino":    12,
		"duracao":   45,
		"data":      "2026-08-01",
		"nivel":     "INTERMEDIARIO",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, esperava 201", rec.Code)
	}
	if recebido["titulo"] != "Treino #12" {
		t.Fatalf("titulo = %v", recebido["titulo"])
	}
	if recebido["nivel"] != "INTERMEDIARIO" {
		t.Fatalf("nivel = %v", recebido["nivel"])
	}
}

func TestAtualizarClienteMesclaComSnapshot(t *testing.T) {
	var enviado map[string]any
	stub := &stubCore{
		getCliente: func(id int64) (map[string]any, error) {
			return map[string]any{
				"id":       float64(id),
				"username": "maria",
				"email":    "maria@fit.com",
				"nome":     "Maria",
				"telefone": "11999990000",
			}, nil
		},
		atualizarCliente: func(id int64, dados map[string]any) (map[string]any, error) {
			enviado = dados
			return dados, nil
		},
	}
	router := newTestRouter(stub)

	rec, _ := doJSON(t, router, http.MethodPut, "/bff/clientes/5", "tok", map[string]any{
		"nome":  "Maria Silva",
		"email": "hacker@evil.com",
		"senha": "novaSenha1",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if enviado["nome"] != "Maria Silva" {
		t.Fatalf("nome = %v", enviado["nome"])
	}
	if enviado["email"] != "maria@fit.com" {
		t.Fatalf("email = %v, deve vir sempre do snapshot", enviado["email"])
	}
	if enviado["telefone"] != "11999990000" {
		t.Fatalf("telefone = %v, campo omitido deve vir do snapshot", enviado["telefone"])
	}
	if _, tem := enviado["senha"]; tem {
		t.Error("campo 'senha' não pode chegar ao core")
	}
	if enviado["password"] != "novaSenha1" {
		t.Fatalf("password = %v", enviado["password"])
	}
}

func TestWebhookRepassaAssinatura(t *testing.T) {
	var gotSig, gotSecret string
	stub := &stubCore{
		processarWebhook: func(payload map[string]any, signature, secret string) error {
			gotSig, gotSecret = signature, secret
			return nil
		},
	}
	router := newTestRouter(stub)

	raw, _ := json.Marshal(map[string]any{"evento": "pagamento.aprovado"})
	req := httptest.NewRequest(http.MethodPost, "/bff/premium/webhook?webhookSecret=s3cr3t", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", "sig-xyz")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if gotSig != "sig-xyz" || gotSecret != "s3cr3t" {
		t.Fatalf("signature = %q secret = %q, repasse deve ser intacto", gotSig, gotSecret)
	}
}

func TestIniciarConversaRecusadaVira400(t *testing.T) {
	stub := &stubCore{
		iniciarConversa: func(outroID int64) (map[string]any, error) {
			return nil, &core.APIError{Status: http.StatusForbidden, Message: "Chat exclusivo para assinantes premium"}
		},
	}
	router := newTestRouter(stub)

	rec, env := doJSON(t, router, http.MethodPost, "/bff/chat/conversas/iniciar/8", "tok", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, esperava 400", rec.Code)
	}
	if env.Message != "Chat exclusivo para assinantes premium" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestLeituraRepetidaDevolveOsMesmosDados(t *testing.T) {
	stub := &stubCore{
		getTreino: func(id int64) (map[string]any, error) {
			return map[string]any{
				"id":        float64(id),
				"titulo":    "Treino A",
				"descricao": "Pernas",
				"nivel":     "INICIANTE",
			}, nil
		},
	}
	router := newTestRouter(stub)

	rec1, env1 := doJSON(t, router, http.MethodGet, "/bff/treinos/7", "tok", nil)
	rec2, env2 := doJSON(t, router, http.MethodGet, "/bff/treinos/7", "tok", nil)

	if rec1.Code != http.StatusOK || rec2.Code != http.StatusOK {
		t.Fatalf("status = %d / %d", rec1.Code, rec2.Code)
	}
	if !reflect.DeepEqual(env1.Data, env2.Data) {
		t.Fatalf("leituras do mesmo recurso divergiram:\n%v\n%v", env1.Data, env2.Data)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatal("corpos das duas leituras deveriam ser idênticos")
	}
}

func TestCriarTreinoDepoisBuscarPreservaCampos(t *testing.T) {
	criados := map[int64]map[string]any{}
	stub := &stubCore{
		criarTreino: func(dados map[string]any) (map[string]any, error) {
			salvo := map[string]any{"id": float64(31)}
			for k, v := range dados {
				salvo[k] = v
			}
			criados[31] = salvo
			return salvo, nil
		},
		getTreino: func(id int64) (map[string]any, error) {
			return criados[id], nil
		},
	}
	router := newTestRouter(stub)

	enviado := map[string]any{
		"clienteId": 4,
		"titulo":    "Peito e ombro",
		"descricao": "Supino, desenvolvimento",
		"nivel":     "AVANCADO",
	}
	rec, _ := doJSON(t, router, http.MethodPost, "/bff/treinos/", "tok", enviado)
	if rec.Code != http.StatusCreated {
		t.Fatalf("criação: status = %d", rec.Code)
	}

	rec, env := doJSON(t, router, http.MethodGet, "/bff/treinos/31", "tok", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("busca: status = %d", rec.Code)
	}

	data := env.Data.(map[string]any)
	for _, campo := range []string{"titulo", "descricao", "nivel"} {
		if data[campo] != enviado[campo] {
			t.Errorf("%s = %v, esperava %v", campo, data[campo], enviado[campo])
		}
	}
	if data["id"] == nil {
		t.Error("resposta da busca deveria conter o id atribuído")
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubCore{})

	rec, env := doJSON(t, router, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !env.Success {
		t.Fatal("success deveria ser true")
	}
}
