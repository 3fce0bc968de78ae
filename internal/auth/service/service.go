// Package service implements account registration, login and token issuance.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadscoring_backend/internal/auth/repository"
	"leadscoring_backend/internal/auth/transport"
	"leadscoring_backend/platform/apperr"
	"leadscoring_backend/platform/config"
	"leadscoring_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service implements account management and token issuance.
type Service struct {
	repo *repository.Repo
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

// New creates the auth service.
func New(repo *repository.Repo, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// Register creates a new account and returns an access token for it.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (transport.TokenResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return transport.TokenResponse{}, fmt.Errorf("hash password: %w", err)
	}

	account := repository.Account{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return transport.TokenResponse{}, err
	}

	s.log.Info("account_registered", "account_id", account.ID)
	return s.issueToken(account)
}

// Login verifies credentials and returns an access token.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.TokenResponse, error) {
	account, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
			return transport.TokenResponse{}, apperr.Unauthorized("invalid credentials")
		}
		return transport.TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return transport.TokenResponse{}, apperr.Unauthorized("invalid credentials")
	}

	return s.issueToken(account)
}

// GetAccount returns the public view of an account.
func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (transport.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.Account{}, err
	}
	return toTransport(account), nil
}

func (s *Service) issueToken(account repository.Account) (transport.TokenResponse, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.GetAccessTokenTTL())

	claims := jwt.MapClaims{
		"sub":  account.ID.String(),
		"type": "access",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return transport.TokenResponse{}, fmt.Errorf("sign access token: %w", err)
	}

	return transport.TokenResponse{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		Account:     toTransport(account),
	}, nil
}

func toTransport(a repository.Account) transport.Account {
	return transport.Account{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
	}
}
