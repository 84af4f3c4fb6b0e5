package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries agrupa o acesso à tabela de usuários locais.
type Queries struct {
	pool *pgxpool.Pool
}

// New cria o repositório sobre o pool informado.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

// GetUsuarioByEmail busca conta local por email (case-insensitive).
func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	const sql = `
		SELECT id, nome, email, senha_hash, ativo, criado_em
		FROM usuarios
		WHERE lower(email) = lower($1)`

	var u Usuario
	err := q.pool.QueryRow(ctx, sql, strings.TrimSpace(email)).
		Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Ativo, &u.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}

// GetUsuarioByID busca conta local por ID.
func (q *Queries) GetUsuarioByID(ctx context.Context, id uuid.UUID) (Usuario, error) {
	const sql = `
		SELECT id, nome, email, senha_hash, ativo, criado_em
		FROM usuarios
		WHERE id = $1`

	var u Usuario
	err := q.pool.QueryRow(ctx, sql, id).
		Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Ativo, &u.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}

// InsertUsuario cria conta local. Violação de unicidade de email vira
// ErrEmailEmUso.
func (q *Queries) InsertUsuario(ctx context.Context, nome, email, senhaHash string) (Usuario, error) {
	const sql = `
		INSERT INTO usuarios (id, nome, email, senha_hash, ativo, criado_em)
		VALUES ($1, $2, $3, $4, TRUE, now())
		RETURNING id, nome, email, senha_hash, ativo, criado_em`

	var u Usuario
	err := q.pool.QueryRow(ctx, sql, uuid.New(), strings.TrimSpace(nome), strings.ToLower(strings.TrimSpace(email)), senhaHash).
		Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Ativo, &u.CriadoEm)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Usuario{}, ErrEmailEmUso
		}
		return Usuario{}, err
	}
	return u, nil
}
