package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/pkg/validate"
)

type TokenCodec interface {
	Issue(s tokens.Subject) (string, time.Time, error)
	Parse(token string) (*tokens.AccessClaims, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// AccessService authenticates users and resolves bearer tokens. Permission
// decisions always use the user row as currently stored, never token claims.
type AccessService struct {
	Repo   *repo.GormRepo
	Tokens TokenCodec
	Hasher PasswordHasher
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccessService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "access.authenticate")

	user, err := s.Repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("authenticate_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("authenticate_failed", "status", 500, "error", err)
		return nil, wrapInternal("load user", err)
	}
	if !s.Hasher.Verify(user.Password, password) {
		l.Warn("authenticate_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccessService) IssueToken(ctx context.Context, user *models.User) (*transport.TokenResponse, error) {
	tok, exp, err := s.Tokens.Issue(tokens.Subject{
		ID:         user.ID,
		Email:      user.Email,
		IsAdmin:    user.IsAdmin,
		IsSupplier: user.IsSupplier,
		IsCustomer: user.IsCustomer,
	})
	if err != nil {
		logging.FromContext(ctx).Error("issue_token_failed", "user_id", user.ID, "error", err)
		return nil, wrapInternal("issue token", err)
	}
	return &transport.TokenResponse{AccessToken: tok, TokenType: "bearer", ExpiresAt: exp}, nil
}

// Login authenticates with the password grant and issues an access token.
func (s *AccessService) Login(ctx context.Context, req transport.TokenRequest) (*transport.TokenResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, invalid("username and password are required", err)
	}
	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	res, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("login_successful", "user_id", user.ID)
	return res, nil
}

// ResolveIdentity verifies the token and loads the user it names.
func (s *AccessService) ResolveIdentity(ctx context.Context, token string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "access.resolve_identity")

	claims, err := s.Tokens.Parse(token)
	if err != nil {
		l.Warn("resolve_identity_failed", "status", 401, "reason", "bad token", "error", err)
		return nil, ErrInvalidCredential
	}
	id, err := claims.UserIDFromSubject()
	if err != nil {
		l.Warn("resolve_identity_failed", "status", 401, "reason", "bad subject", "error", err)
		return nil, ErrInvalidCredential
	}

	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("resolve_identity_failed", "status", 404, "reason", "user no longer exists", "user_id", id)
			return nil, notFound("user")
		}
		return nil, wrapInternal("load user", err)
	}
	return user, nil
}

func (s *AccessService) RequireAuthenticated(ctx context.Context, token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingCredential
	}
	return s.ResolveIdentity(ctx, token)
}

func RequireRole(user *models.User, role models.Role) (*models.User, error) {
	if user == nil {
		return nil, ErrMissingCredential
	}
	if !user.HasRole(role) {
		return nil, forbidden("only for " + string(role))
	}
	return user, nil
}

// RequireOwnership is strict id equality; admins get no override.
func RequireOwnership(user *models.User, resource models.Owned) bool {
	if user == nil || resource == nil {
		return false
	}
	return user.ID != 0 && user.ID == resource.OwnerID()
}
