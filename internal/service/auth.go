package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/persona-fest/server-go/internal/config"
	apperrors "github.com/persona-fest/server-go/internal/errors"
	"github.com/persona-fest/server-go/internal/model"
	"github.com/persona-fest/server-go/internal/repository"
	"github.com/persona-fest/server-go/internal/token"
)

// errInvalidCredentials is shared by every login failure path so that an
// unknown email, an inactive account and a wrong password are
// indistinguishable to the caller.
var errInvalidCredentials = apperrors.Unauthorized("invalid email or password")

type AuthService struct {
	accounts        repository.AccountRepository
	tokens          *token.Manager
	superAdminEmail string
}

func NewAuthService(accounts repository.AccountRepository, tokens *token.Manager, superAdminEmail string) *AuthService {
	return &AuthService{
		accounts:        accounts,
		tokens:          tokens,
		superAdminEmail: normalizeEmail(superAdminEmail),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. New accounts are never admins and are active
// immediately. The caller gets the stored account back; its password hash is
// excluded from serialization at the model level.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.Account, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	if name == "" {
		return nil, apperrors.MissingRequired("name")
	}
	if email == "" {
		return nil, apperrors.MissingRequired("email")
	}
	if req.Password == "" {
		return nil, apperrors.MissingRequired("password")
	}
	if len(req.Password) < config.MinPasswordLength {
		return nil, apperrors.ValidationError("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), config.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password").WithCause(err)
	}

	account, err := s.accounts.Create(ctx, model.CreateAccountParams{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.New(apperrors.ErrCodeConflict, "an account with this email already exists")
		}
		return nil, apperrors.Database(err)
	}

	log.Info().Str("accountId", account.ID.Hex()).Str("email", account.Email).Msg("account registered")

	return account, nil
}

// Login verifies credentials and issues a session token. remember selects
// the 30-day expiry class. lastLogin is updated on success; a failed update
// does not fail the login.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.Account, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", errInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", apperrors.Database(err)
	}
	if account == nil || !account.IsActive {
		return nil, "", errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", errInvalidCredentials
	}

	now := s.tokens.TimeFunc()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID.Hex(), now); err != nil {
		log.Warn().Err(err).Str("accountId", account.ID.Hex()).Msg("failed to update lastLogin")
	} else {
		account.LastLogin = &now
	}

	tok, err := s.tokens.Issue(account.ID.Hex(), account.Email, account.IsAdmin, req.Remember)
	if err != nil {
		return nil, "", apperrors.Internal("failed to issue token").WithCause(err)
	}

	return account, tok, nil
}

// Authorize validates a bearer token and returns its decoded identity.
func (s *AuthService) Authorize(tokenString string) (*token.Claims, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrMissingToken) {
			return nil, apperrors.Unauthorized("missing authentication token")
		}
		return nil, apperrors.InvalidToken("invalid or expired token")
	}
	return claims, nil
}

// IsPrivileged is the single privilege-resolution point: an identity is
// admin if its decoded flag says so or if it is the configured super-admin,
// which need not exist as a stored account.
func (s *AuthService) IsPrivileged(claims *token.Claims) bool {
	if claims == nil {
		return false
	}
	if claims.IsAdmin {
		return true
	}
	return s.superAdminEmail != "" && normalizeEmail(claims.Email) == s.superAdminEmail
}

// GetAccount looks up an account by id.
func (s *AuthService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account == nil {
		return nil, apperrors.NotFound("account")
	}
	return account, nil
}

// ListAccounts returns all accounts, newest first.
func (s *AuthService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.accounts.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return accounts, nil
}

// CountAccounts reports the number of stored accounts.
func (s *AuthService) CountAccounts(ctx context.Context) (int, error) {
	return s.accounts.Count(ctx)
}
