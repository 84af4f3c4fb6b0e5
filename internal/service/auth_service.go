package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/academiafit/bff/internal/auth"
	"github.com/academiafit/bff/internal/repo"
	"github.com/academiafit/bff/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação local.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrEmailTaken indica email já cadastrado no esquema legado.
	ErrEmailTaken = errors.New("este email já está cadastrado")
	// ErrSessionRevoked indica sessão revogada ou expirada.
	ErrSessionRevoked = auth.ErrInvalidSession
)

type authRepository interface {
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error)
	InsertUsuario(ctx context.Context, nome, email, senhaHash string) (repo.Usuario, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// AuthService concentra o esquema de autenticação legado: contas locais no
// Postgres e sessões revogáveis no Redis. O esquema de repasse (token do core
// encaminhado opaco) não passa por aqui.
type AuthService struct {
	repo       authRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	sessionTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(r authRepository, redisClient redisCommander, jwtMgr *auth.JWTManager, sessionTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, sessionTTL: sessionTTL}
}

// JWT expõe o gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// UserProfile descreve a conta local exposta ao frontend.
type UserProfile struct {
	ID       string    `json:"id"`
	Nome     string    `json:"name"`
	Email    string    `json:"email"`
	CriadoEm time.Time `json:"created_at"`
}

// LoginResult representa retorno padrão das autenticações locais.
type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Profile     UserProfile `json:"user"`
}

// Register cria conta local com hash Argon2id e abre sessão.
func (s *AuthService) Register(ctx context.Context, nome, email, senha string) (*LoginResult, error) {
	if err := util.ValidateEmail(email); err != nil {
		return nil, ErrInvalidCredentials
	}

	hash, err := auth.Hash(senha)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.InsertUsuario(ctx, nome, email, hash)
	if err != nil {
		if errors.Is(err, repo.ErrEmailEmUso) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Msg("conta local registrada")
	return s.openSession(ctx, user)
}

// Login autentica conta local.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	user, err := s.repo.GetUsuarioByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login local: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, user.SenhaHash)
	if err != nil || !ok {
		log.Warn().Msg("login local: senha inválida")
		return nil, ErrInvalidCredentials
	}

	if !user.Ativo {
		return nil, ErrAccountDisabled
	}

	return s.openSession(ctx, user)
}

func (s *AuthService) openSession(ctx context.Context, user repo.Usuario) (*LoginResult, error) {
	token, jti, err := s.jwt.GenerateAccessToken(user.ID.String())
	if err != nil {
		return nil, err
	}

	sessionKey := auth.SessionRedisKey(jti)
	if err := s.redis.Set(ctx, sessionKey, user.ID.String(), s.sessionTTL).Err(); err != nil {
		return nil, err
	}

	userKey := auth.UserSessionsRedisKey(user.ID.String())
	if err := s.redis.SAdd(ctx, userKey, jti).Err(); err != nil {
		return nil, err
	}
	_ = s.redis.Expire(ctx, userKey, s.sessionTTL).Err()

	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		Profile:     toProfile(user),
	}, nil
}

// ValidateSession confere assinatura do token e existência da sessão no Redis.
// Devolve o usuário dono da sessão.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (repo.Usuario, string, error) {
	claims, err := s.jwt.ParseAndValidate(token)
	if err != nil {
		return repo.Usuario{}, "", ErrSessionRevoked
	}

	if err := s.redis.Get(ctx, auth.SessionRedisKey(claims.ID)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return repo.Usuario{}, "", ErrSessionRevoked
		}
		return repo.Usuario{}, "", err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return repo.Usuario{}, "", ErrSessionRevoked
	}

	user, err := s.repo.GetUsuarioByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Usuario{}, "", ErrSessionRevoked
		}
		return repo.Usuario{}, "", err
	}

	return user, claims.ID, nil
}

// Logout revoga a sessão atual.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	user, jti, err := s.ValidateSession(ctx, token)
	if err != nil {
		return err
	}

	if err := s.redis.Del(ctx, auth.SessionRedisKey(jti)).Err(); err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID.String()).Msg("logout local")
	return nil
}

// RevokeAll revoga todas as sessões do usuário dono do token.
func (s *AuthService) RevokeAll(ctx context.Context, token string) error {
	user, _, err := s.ValidateSession(ctx, token)
	if err != nil {
		return err
	}

	userKey := auth.UserSessionsRedisKey(user.ID.String())
	jtis, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, auth.SessionRedisKey(jti))
	}
	keys = append(keys, userKey)

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return err
	}

	log.Info().Str("user_id", user.ID.String()).Int("sessions", len(jtis)).Msg("todas as sessões revogadas")
	return nil
}

// Me devolve o perfil da conta local dona do token.
func (s *AuthService) Me(ctx context.Context, token string) (UserProfile, error) {
	user, _, err := s.ValidateSession(ctx, token)
	if err != nil {
		return UserProfile{}, err
	}
	return toProfile(user), nil
}

func toProfile(user repo.Usuario) UserProfile {
	return UserProfile{
		ID:       user.ID.String(),
		Nome:     user.Nome,
		Email:    user.Email,
		CriadoEm: user.CriadoEm,
	}
}
