package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/academiafit/bff/internal/config"
	"github.com/academiafit/bff/internal/http/middleware"
	"github.com/academiafit/bff/internal/service"
)

// CoreAPI é a superfície do cliente do core consumida pelos handlers.
// Interface própria para permitir stubs nos testes.
type CoreAPI interface {
	RegistrarUsuario(ctx context.Context, dados map[string]any) (map[string]any, error)
	AutenticarUsuario(ctx context.Context, emailOuUsername, senha string) (map[string]any, error)
	ValidarToken(ctx context.Context, token string) (map[string]any, error)
	ObterUsuarioAutenticado(ctx context.Context, token string) (map[string]any, error)
	LogoutUsuario(ctx context.Context, token string) error

	GetCliente(ctx context.Context, clienteID int64) (map[string]any, error)
	AtualizarCliente(ctx context.Context, clienteID int64, dados map[string]any, token string) (map[string]any, error)
	AlterarSenha(ctx context.Context, clienteID int64, senhaAtual, novaSenha, token string) error
	AtivarPremium(ctx context.Context, clienteID int64, ativar bool, meses int) (map[string]any, error)

	GetTreino(ctx context.Context, treinoID int64) (map[string]any, error)
	ListarTreinos(ctx context.Context) ([]map[string]any, error)
	ListarTreinosPorCliente(ctx context.Context, clienteID int64, token string) ([]map[string]any, error)
	CriarTreino(ctx context.Context, dados map[string]any, token string) (map[string]any, error)

	GetPagamento(ctx context.Context, pagamentoID int64) (map[string]any, error)
	ListarPagamentos(ctx context.Context) ([]map[string]any, error)
	ListarPagamentosPorCliente(ctx context.Context, clienteID int64) ([]map[string]any, error)
	RegistrarPagamento(ctx context.Context, dados map[string]any) (map[string]any, error)

	CriarCheckoutPremium(ctx context.Context, token string) (map[string]any, error)
	ProcessarWebhookPremium(ctx context.Context, payload map[string]any, signature, webhookSecret string) error

	GetChatConversas(ctx context.Context, token string) ([]map[string]any, error)
	GetChatMensagens(ctx context.Context, token string, conversaID int64, page, size int) ([]map[string]any, error)
	IniciarConversa(ctx context.Context, token string, outroUsuarioID int64) (map[string]any, error)
	MarcarMensagensComoLidas(ctx context.Context, token string, conversaID int64) error
	GetChatUsuarios(ctx context.Context, token string) ([]map[string]any, error)
	GetChatUsuariosOnline(ctx context.Context, token string) ([]map[string]any, error)
}

// Server agrega as dependências dos handlers.
type Server struct {
	core   CoreAPI
	auth   *service.AuthService
	logger zerolog.Logger
}

// NewServer monta o servidor com suas dependências.
func NewServer(core CoreAPI, auth *service.AuthService, logger zerolog.Logger) *Server {
	return &Server{core: core, auth: auth, logger: logger}
}

// Router monta a árvore de rotas com os middlewares globais e por grupo.
func (s *Server) Router(cfg config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(s.logger))
	r.Use(middleware.Recover(s.logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))

	publicLimiter := middleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)
	authLimiter := middleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst)
	r.Use(publicLimiter.Handler)

	r.Get("/health", s.handleHealth)

	// Esquema legado com contas locais (pgx + redis + JWT próprio).
	r.Route("/auth", func(r chi.Router) {
		r.With(authLimiter.Handler).Post("/register", s.handleLegacyRegister)
		r.With(authLimiter.Handler).Post("/login", s.handleLegacyLogin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireBearer)
			r.Post("/logout", s.handleLegacyLogout)
			r.Get("/me", s.handleLegacyMe)
			r.Post("/revoke-all", s.handleLegacyRevokeAll)
		})
	})

	// Superfície BFF: repasse ao core.
	r.Route("/bff", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter.Handler).Post("/cadastro", s.handleCadastro)
			r.With(authLimiter.Handler).Post("/login", s.handleLogin)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireBearer)
				r.Get("/me", s.handleMe)
				r.Get("/validar-token", s.handleValidarToken)
				r.Post("/logout", s.handleLogout)
			})
		})

		r.Route("/clientes", func(r chi.Router) {
			r.Use(middleware.RequireBearer)
			r.Put("/{id}", s.handleAtualizarCliente)
			r.Put("/{id}/senha", s.handleAlterarSenha)
			r.Post("/{id}/premium", s.handleAtivarPremium)
		})

		r.Route("/treinos", func(r chi.Router) {
			r.Use(middleware.RequireBearer)
			r.Get("/", s.handleListarTreinos)
			r.Get("/{id}", s.handleGetTreino)
			r.Get("/cliente/{clienteId}", s.handleListarTreinosDoCliente)
			r.Post("/", s.handleCriarTreino)
		})

		r.With(middleware.RequireBearer).Post("/frequencias", s.handleRegistrarFrequencia)

		r.Route("/pagamentos", func(r chi.Router) {
			r.Use(middleware.RequireBearer)
			r.Get("/", s.handleListarPagamentos)
			r.Get("/{id}", s.handleGetPagamento)
			r.Get("/cliente/{clienteId}", s.handleListarPagamentosDoCliente)
			r.Post("/", s.handleRegistrarPagamento)
		})

		r.With(middleware.RequireBearer).Get("/perfil/{clienteId}", s.handlePerfil)

		r.Route("/premium", func(r chi.Router) {
			r.With(middleware.RequireBearer).Post("/checkout", s.handleCheckoutPremium)
			r.Post("/webhook", s.handleWebhookPremium)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(middleware.RequireBearer)
			r.Get("/conversas", s.handleChatConversas)
			r.Get("/conversas/{id}/mensagens", s.handleChatMensagens)
			r.Post("/conversas/iniciar/{outroUsuarioId}", s.handleChatIniciarConversa)
			r.Post("/conversas/{id}/lidas", s.handleChatMarcarLidas)
			r.Get("/usuarios", s.handleChatUsuarios)
			r.Get("/usuarios/online", s.handleChatUsuariosOnline)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, "BFF operacional")
}
