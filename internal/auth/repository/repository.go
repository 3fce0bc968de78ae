// Package repository provides data access for accounts.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadscoring_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Account is the persistence model for an account row.
type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Repo provides account persistence backed by Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates an account repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertAccountQuery = `
	INSERT INTO accounts (id, email, name, password_hash, created_at)
	VALUES ($1, $2, $3, $4, $5)`

// Create inserts a new account. Returns apperr.Conflict when the email
// is already registered.
func (r *Repo) Create(ctx context.Context, a Account) error {
	_, err := r.pool.Exec(ctx, insertAccountQuery, a.ID, a.Email, a.Name, a.PasswordHash, a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("email already registered")
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

const selectAccountByEmailQuery = `
	SELECT id, email, name, password_hash, created_at
	FROM accounts
	WHERE email = $1`

// GetByEmail fetches an account by email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (Account, error) {
	row := r.pool.QueryRow(ctx, selectAccountByEmailQuery, email)
	return scanAccount(row)
}

const selectAccountByIDQuery = `
	SELECT id, email, name, password_hash, created_at
	FROM accounts
	WHERE id = $1`

// GetByID fetches an account by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	row := r.pool.QueryRow(ctx, selectAccountByIDQuery, id)
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, apperr.NotFound("account not found")
		}
		return Account{}, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}
