package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	connectTimeout = 3 * time.Second
	defaultTimeout = 10 * time.Second
	premiumTimeout = 30 * time.Second

	readRetries  = 2
	retryBackoff = 200 * time.Millisecond

	snippetLimit = 200
)

// Client encapsula todas as chamadas ao core backend. É o único componente
// autorizado a falar com o upstream; handlers nunca montam URLs.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Config descreve os parâmetros essenciais do cliente.
type Config struct {
	BaseURL string
}

// New cria um novo cliente apontando para o core backend.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("core: base url obrigatória")
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
	}, nil
}

// envelope é o contrato de resposta do core: {success, data, message}.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type callOpts struct {
	token     string
	timeout   time.Duration
	headers   map[string]string
	retryable bool
}

// call executa a requisição e devolve o corpo bruto em caso de 2xx.
// Falhas de transporte viram ErrUnavailable; status não-2xx vira *APIError
// com a mensagem original do core.
func (c *Client) call(ctx context.Context, op, method, path string, body any, opts callOpts) ([]byte, error) {
	timeout := opts.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("core %s: marshal: %w", op, err)
		}
	}

	attempts := 1
	if opts.retryable && method == http.MethodGet {
		attempts += readRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(retryBackoff):
			}
		}

		req, err := c.newRequest(ctx, method, path, payload, opts)
		if err != nil {
			return nil, err
		}

		raw, status, err := c.do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			log.Warn().Str("op", op).Int("attempt", attempt+1).Err(err).Msg("core transport failure")
			continue
		}

		log.Info().Str("op", op).Int("status", status).Str("body_snippet", snippet(raw)).Msg("core response")

		if status >= 200 && status < 300 {
			return raw, nil
		}
		return nil, &APIError{Status: status, Message: upstreamMessage(raw, status)}
	}

	return nil, lastErr
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload []byte, opts callOpts) (*http.Request, error) {
	var reader *bytes.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}
	for k, v := range opts.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), resp.StatusCode, nil
}

// unwrapObject devolve o membro data quando presente, senão o corpo inteiro.
func unwrapObject(raw []byte) (map[string]any, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		var data map[string]any
		if err := json.Unmarshal(env.Data, &data); err == nil {
			return data, nil
		}
	}

	var whole map[string]any
	if err := json.Unmarshal(raw, &whole); err != nil {
		return nil, fmt.Errorf("core: resposta inválida: %w", err)
	}
	return whole, nil
}

// unwrapList devolve o membro data como lista; corpo sem envelope (array
// cru) é aceito como a própria lista, e data ausente ou null vira vazio.
func unwrapList(raw []byte) ([]map[string]any, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
			return []map[string]any{}, nil
		}
		var list []map[string]any
		if err := json.Unmarshal(env.Data, &list); err == nil {
			return list, nil
		}
	}

	var whole []map[string]any
	if err := json.Unmarshal(raw, &whole); err != nil {
		return nil, fmt.Errorf("core: resposta inválida: %w", err)
	}
	return whole, nil
}

func upstreamMessage(raw []byte, status int) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && strings.TrimSpace(env.Message) != "" {
		return env.Message
	}
	return fmt.Sprintf("core backend respondeu status %d", status)
}

func snippet(raw []byte) string {
	if len(raw) > snippetLimit {
		return string(raw[:snippetLimit])
	}
	return string(raw)
}

// ==================== AUTENTICAÇÃO ====================

// RegistrarUsuario registra novo cliente no core backend.
func (c *Client) RegistrarUsuario(ctx context.Context, dados map[string]any) (map[string]any, error) {
	raw, err := c.call(ctx, "registrar_usuario", http.MethodPost, "/api/auth/register", dados, callOpts{})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// AutenticarUsuario autentica no core. O core espera 'username' e 'password'.
func (c *Client) AutenticarUsuario(ctx context.Context, emailOuUsername, senha string) (map[string]any, error) {
	body := map[string]any{
		"username": emailOuUsername,
		"password": senha,
	}
	raw, err := c.call(ctx, "autenticar_usuario", http.MethodPost, "/api/auth/login", body, callOpts{})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// ValidarToken confere o token junto ao core via /api/auth/me.
func (c *Client) ValidarToken(ctx context.Context, token string) (map[string]any, error) {
	raw, err := c.call(ctx, "validar_token", http.MethodGet, "/api/auth/me", nil, callOpts{token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// ObterUsuarioAutenticado devolve o perfil do dono do token.
func (c *Client) ObterUsuarioAutenticado(ctx context.Context, token string) (map[string]any, error) {
	raw, err := c.call(ctx, "obter_usuario_autenticado", http.MethodGet, "/api/auth/me", nil, callOpts{token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// LogoutUsuario revoga o token no core.
func (c *Client) LogoutUsuario(ctx context.Context, token string) error {
	_, err := c.call(ctx, "logout_usuario", http.MethodPost, "/api/auth/logout", nil, callOpts{token: token})
	return err
}

// ==================== CLIENTES ====================

// GetCliente busca cliente por ID.
func (c *Client) GetCliente(ctx context.Context, clienteID int64) (map[string]any, error) {
	path := "/api/clientes/" + strconv.FormatInt(clienteID, 10)
	raw, err := c.call(ctx, "get_cliente", http.MethodGet, path, nil, callOpts{retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// AtualizarCliente envia atualização integral do perfil. O core valida que o
// usuário só pode atualizar o próprio perfil.
func (c *Client) AtualizarCliente(ctx context.Context, clienteID int64, dados map[string]any, token string) (map[string]any, error) {
	path := "/api/clientes/" + strconv.FormatInt(clienteID, 10)
	raw, err := c.call(ctx, "atualizar_cliente", http.MethodPut, path, dados, callOpts{token: token})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// AlterarSenha troca a senha do cliente no core.
func (c *Client) AlterarSenha(ctx context.Context, clienteID int64, senhaAtual, novaSenha, token string) error {
	path := "/api/clientes/" + strconv.FormatInt(clienteID, 10) + "/senha"
	body := map[string]any{
		"senhaAtual": senhaAtual,
		"novaSenha":  novaSenha,
	}
	_, err := c.call(ctx, "alterar_senha", http.MethodPut, path, body, callOpts{token: token})
	return err
}

// AtivarPremium liga/desliga premium de um cliente (uso em desenvolvimento).
func (c *Client) AtivarPremium(ctx context.Context, clienteID int64, ativar bool, meses int) (map[string]any, error) {
	q := url.Values{}
	q.Set("ativar", strconv.FormatBool(ativar))
	q.Set("meses", strconv.Itoa(meses))
	path := "/api/clientes/" + strconv.FormatInt(clienteID, 10) + "/premium?" + q.Encode()

	raw, err := c.call(ctx, "ativar_premium", http.MethodPost, path, nil, callOpts{})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// ==================== TREINOS ====================

// GetTreino busca treino por ID.
func (c *Client) GetTreino(ctx context.Context, treinoID int64) (map[string]any, error) {
	path := "/api/treinos/" + strconv.FormatInt(treinoID, 10)
	raw, err := c.call(ctx, "get_treino", http.MethodGet, path, nil, callOpts{retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// ListarTreinos lista todos os treinos.
func (c *Client) ListarTreinos(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.call(ctx, "listar_treinos", http.MethodGet, "/api/treinos", nil, callOpts{retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// ListarTreinosPorCliente lista treinos de um cliente na ordem do core.
func (c *Client) ListarTreinosPorCliente(ctx context.Context, clienteID int64, token string) ([]map[string]any, error) {
	path := "/api/treinos/cliente/" + strconv.FormatInt(clienteID, 10)
	raw, err := c.call(ctx, "listar_treinos_por_cliente", http.MethodGet, path, nil, callOpts{token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// CriarTreino cria um treino no core.
func (c *Client) CriarTreino(ctx context.Context, dados map[string]any, token string) (map[string]any, error) {
	raw, err := c.call(ctx, "criar_treino", http.MethodPost, "/api/treinos", dados, callOpts{token: token})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// ==================== PAGAMENTOS ====================

// GetPagamento busca pagamento por ID.
func (c *Client) GetPagamento(ctx context.Context, pagamentoID int64) (map[string]any, error) {
	path := "/api/pagamentos/" + strconv.FormatInt(pagamentoID, 10)
	raw, err := c.call(ctx, "get_pagamento", http.MethodGet, path, nil, callOpts{retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// ListarPagamentos lista todos os pagamentos.
func (c *Client) ListarPagamentos(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.call(ctx, "listar_pagamentos", http.MethodGet, "/api/pagamentos", nil, callOpts{retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// ListarPagamentosPorCliente lista o histórico de pagamentos de um cliente.
func (c *Client) ListarPagamentosPorCliente(ctx context.Context, clienteID int64) ([]map[string]any, error) {
	path := "/api/pagamentos/cliente/" + strconv.FormatInt(clienteID, 10)
	raw, err := c.call(ctx, "listar_pagamentos_por_cliente", http.MethodGet, path, nil, callOpts{retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// RegistrarPagamento registra pagamento já traduzido para o vocabulário do core.
func (c *Client) RegistrarPagamento(ctx context.Context, dados map[string]any) (map[string]any, error) {
	raw, err := c.call(ctx, "registrar_pagamento", http.MethodPost, "/api/pagamentos", dados, callOpts{})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// ==================== PREMIUM ====================

// CriarCheckoutPremium abre o checkout da assinatura. Operação adjacente a
// pagamento; usa o timeout estendido.
func (c *Client) CriarCheckoutPremium(ctx context.Context, token string) (map[string]any, error) {
	raw, err := c.call(ctx, "criar_checkout_premium", http.MethodPost, "/api/premium/checkout", nil, callOpts{token: token, timeout: premiumTimeout})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// ProcessarWebhookPremium repassa o webhook do provedor de pagamento sem tocar
// na assinatura: header e secret seguem intactos, a verificação é do core.
func (c *Client) ProcessarWebhookPremium(ctx context.Context, payload map[string]any, signature, webhookSecret string) error {
	path := "/api/premium/webhook"
	if webhookSecret != "" {
		path += "?webhookSecret=" + url.QueryEscape(webhookSecret)
	}

	opts := callOpts{timeout: premiumTimeout}
	if signature != "" {
		opts.headers = map[string]string{"X-Webhook-Signature": signature}
	}

	_, err := c.call(ctx, "processar_webhook_premium", http.MethodPost, path, payload, opts)
	return err
}

// ==================== CHAT ====================

// GetChatConversas lista conversas do usuário autenticado.
func (c *Client) GetChatConversas(ctx context.Context, token string) ([]map[string]any, error) {
	raw, err := c.call(ctx, "get_chat_conversas", http.MethodGet, "/api/chat/conversas", nil, callOpts{token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// GetChatMensagens busca mensagens paginadas de uma conversa.
func (c *Client) GetChatMensagens(ctx context.Context, token string, conversaID int64, page, size int) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	path := "/api/chat/conversas/" + strconv.FormatInt(conversaID, 10) + "/mensagens?" + q.Encode()

	raw, err := c.call(ctx, "get_chat_mensagens", http.MethodGet, path, nil, callOpts{token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// IniciarConversa abre conversa com outro usuário premium.
func (c *Client) IniciarConversa(ctx context.Context, token string, outroUsuarioID int64) (map[string]any, error) {
	path := "/api/chat/conversas/iniciar/" + strconv.FormatInt(outroUsuarioID, 10)
	raw, err := c.call(ctx, "iniciar_conversa", http.MethodPost, path, nil, callOpts{token: token})
	if err != nil {
		return nil, err
	}
	return unwrapObject(raw)
}

// MarcarMensagensComoLidas marca a conversa como lida.
func (c *Client) MarcarMensagensComoLidas(ctx context.Context, token string, conversaID int64) error {
	path := "/api/chat/conversas/" + strconv.FormatInt(conversaID, 10) + "/lidas"
	_, err := c.call(ctx, "marcar_mensagens_lidas", http.MethodPost, path, nil, callOpts{token: token})
	return err
}

// GetChatUsuarios lista usuários premium disponíveis para conversa.
func (c *Client) GetChatUsuarios(ctx context.Context, token string) ([]map[string]any, error) {
	raw, err := c.call(ctx, "get_chat_usuarios", http.MethodGet, "/api/chat/usuarios", nil, callOpts{token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// GetChatUsuariosOnline lista usuários online.
func (c *Client) GetChatUsuariosOnline(ctx context.Context, token string) ([]map[string]any, error) {
	raw, err := c.call(ctx, "get_chat_usuarios_online", http.MethodGet, "/api/chat/usuarios/online", nil, callOpts{token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}
