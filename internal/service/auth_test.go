package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/persona-fest/server-go/internal/errors"
	"github.com/persona-fest/server-go/internal/model"
	"github.com/persona-fest/server-go/internal/repository"
	"github.com/persona-fest/server-go/internal/token"
)

type mockAccountRepo struct {
	findByIDFunc        func(ctx context.Context, id string) (*model.Account, error)
	findByEmailFunc     func(ctx context.Context, email string) (*model.Account, error)
	findAllFunc         func(ctx context.Context) ([]model.Account, error)
	createFunc          func(ctx context.Context, params model.CreateAccountParams) (*model.Account, error)
	updateLastLoginFunc func(ctx context.Context, id string, at time.Time) error
	countFunc           func(ctx context.Context) (int, error)
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockAccountRepo) FindAll(ctx context.Context) ([]model.Account, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockAccountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockAccountRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.updateLastLoginFunc != nil {
		return m.updateLastLoginFunc(ctx, id, at)
	}
	return nil
}

func (m *mockAccountRepo) Count(ctx context.Context) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func newTestAuthService(repo repository.AccountRepository) *AuthService {
	return NewAuthService(repo, token.NewManager("test-secret"), "vserva2006@gmail.com")
}

func storedAccount(email, password string) *model.Account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &model.Account{
		ID:           primitive.NewObjectID(),
		Name:         "Ann",
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates account with normalized email", func(t *testing.T) {
		var gotParams model.CreateAccountParams
		repo := &mockAccountRepo{
			createFunc: func(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
				gotParams = params
				return &model.Account{
					ID:       primitive.NewObjectID(),
					Name:     params.Name,
					Email:    params.Email,
					IsActive: true,
				}, nil
			},
		}
		svc := newTestAuthService(repo)

		account, err := svc.Register(context.Background(), model.RegisterRequest{
			Name: "Ann", Email: "  Ann@X.com ", Password: "secret1",
		})
		require.NoError(t, err)

		assert.Equal(t, "ann@x.com", gotParams.Email)
		assert.Equal(t, "ann@x.com", account.Email)
		assert.False(t, account.IsAdmin)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(gotParams.PasswordHash), []byte("secret1")))
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		svc := newTestAuthService(&mockAccountRepo{})

		cases := []model.RegisterRequest{
			{Email: "ann@x.com", Password: "secret1"},
			{Name: "Ann", Password: "secret1"},
			{Name: "Ann", Email: "ann@x.com"},
		}
		for _, req := range cases {
			_, err := svc.Register(context.Background(), req)
			assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
		}
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc := newTestAuthService(&mockAccountRepo{})

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Name: "Ann", Email: "ann@x.com", Password: "12345",
		})
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		repo := &mockAccountRepo{
			createFunc: func(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
				return nil, repository.ErrDuplicateEmail
			},
		}
		svc := newTestAuthService(repo)

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Name: "Ann", Email: "ann@x.com", Password: "secret1",
		})
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
	})
}

func TestLogin(t *testing.T) {
	t.Run("issues token and updates lastLogin", func(t *testing.T) {
		account := storedAccount("ann@x.com", "secret1")
		var updatedID string
		repo := &mockAccountRepo{
			findByEmailFunc: func(ctx context.Context, email string) (*model.Account, error) {
				assert.Equal(t, "ann@x.com", email)
				return account, nil
			},
			updateLastLoginFunc: func(ctx context.Context, id string, at time.Time) error {
				updatedID = id
				return nil
			},
		}
		svc := newTestAuthService(repo)

		got, tok, err := svc.Login(context.Background(), model.LoginRequest{
			Email: "Ann@X.com", Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, account.ID.Hex(), updatedID)
		require.NotNil(t, got.LastLogin)

		claims, err := svc.Authorize(tok)
		require.NoError(t, err)
		assert.Equal(t, "ann@x.com", claims.Email)
		assert.Equal(t, account.ID.Hex(), claims.AccountID())
		assert.False(t, claims.IsAdmin)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		account := storedAccount("ann@x.com", "secret1")
		repo := &mockAccountRepo{
			findByEmailFunc: func(ctx context.Context, email string) (*model.Account, error) {
				if email == "ann@x.com" {
					return account, nil
				}
				return nil, nil
			},
		}
		svc := newTestAuthService(repo)

		_, _, errUnknown := svc.Login(context.Background(), model.LoginRequest{
			Email: "ghost@x.com", Password: "secret1",
		})
		_, _, errWrongPw := svc.Login(context.Background(), model.LoginRequest{
			Email: "ann@x.com", Password: "wrong",
		})

		require.Error(t, errUnknown)
		require.Error(t, errWrongPw)
		assert.Equal(t, errUnknown, errWrongPw)
		assert.Equal(t, "invalid email or password", errUnknown.(*apperrors.AppError).Message)
	})

	t.Run("inactive account cannot authenticate", func(t *testing.T) {
		account := storedAccount("ann@x.com", "secret1")
		account.IsActive = false
		repo := &mockAccountRepo{
			findByEmailFunc: func(ctx context.Context, email string) (*model.Account, error) {
				return account, nil
			},
		}
		svc := newTestAuthService(repo)

		_, _, err := svc.Login(context.Background(), model.LoginRequest{
			Email: "ann@x.com", Password: "secret1",
		})
		assert.Equal(t, errInvalidCredentials, err)
	})

	t.Run("remember selects the long expiry class", func(t *testing.T) {
		account := storedAccount("ann@x.com", "secret1")
		repo := &mockAccountRepo{
			findByEmailFunc: func(ctx context.Context, email string) (*model.Account, error) {
				return account, nil
			},
		}

		mgr := token.NewManager("test-secret")
		issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		mgr.TimeFunc = func() time.Time { return issued }
		svc := NewAuthService(repo, mgr, "")

		_, tok, err := svc.Login(context.Background(), model.LoginRequest{
			Email: "ann@x.com", Password: "secret1", Remember: true,
		})
		require.NoError(t, err)

		// Still valid two days later, which the 24h class would reject.
		mgr.TimeFunc = func() time.Time { return issued.Add(48 * time.Hour) }
		_, err = svc.Authorize(tok)
		assert.NoError(t, err)
	})

	t.Run("failed lastLogin update does not fail login", func(t *testing.T) {
		account := storedAccount("ann@x.com", "secret1")
		repo := &mockAccountRepo{
			findByEmailFunc: func(ctx context.Context, email string) (*model.Account, error) {
				return account, nil
			},
			updateLastLoginFunc: func(ctx context.Context, id string, at time.Time) error {
				return assert.AnError
			},
		}
		svc := newTestAuthService(repo)

		_, tok, err := svc.Login(context.Background(), model.LoginRequest{
			Email: "ann@x.com", Password: "secret1",
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, tok)
	})
}

func TestAuthorize(t *testing.T) {
	svc := newTestAuthService(&mockAccountRepo{})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		_, err := svc.Authorize("")
		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
	})

	t.Run("malformed token is invalid", func(t *testing.T) {
		_, err := svc.Authorize("garbage")
		assert.Equal(t, apperrors.ErrCodeInvalidToken, apperrors.GetCode(err))
	})

	t.Run("expired token is invalid", func(t *testing.T) {
		mgr := token.NewManager("test-secret")
		issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		mgr.TimeFunc = func() time.Time { return issued }
		expiredSvc := NewAuthService(&mockAccountRepo{}, mgr, "")

		tok, err := mgr.Issue("6123abc", "ann@x.com", false, false)
		require.NoError(t, err)

		mgr.TimeFunc = func() time.Time { return issued.Add(25 * time.Hour) }
		_, err = expiredSvc.Authorize(tok)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, apperrors.GetCode(err))
	})
}

func TestIsPrivileged(t *testing.T) {
	svc := newTestAuthService(&mockAccountRepo{})

	t.Run("nil claims are not privileged", func(t *testing.T) {
		assert.False(t, svc.IsPrivileged(nil))
	})

	t.Run("admin flag grants privilege", func(t *testing.T) {
		assert.True(t, svc.IsPrivileged(&token.Claims{IsAdmin: true, Email: "x@y.com"}))
	})

	t.Run("super admin email grants privilege without flag", func(t *testing.T) {
		assert.True(t, svc.IsPrivileged(&token.Claims{Email: "VServa2006@gmail.com"}))
	})

	t.Run("ordinary identity is not privileged", func(t *testing.T) {
		assert.False(t, svc.IsPrivileged(&token.Claims{Email: "ann@x.com"}))
	})

	t.Run("empty super admin config never matches", func(t *testing.T) {
		noSuper := NewAuthService(&mockAccountRepo{}, token.NewManager("s"), "")
		assert.False(t, noSuper.IsPrivileged(&token.Claims{Email: ""}))
	})
}
