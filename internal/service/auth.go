// Package service provides the business logic of the payment gateway,
// delegating persistence to repositories and security decisions to the
// dedicated components.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qpay/securegate/internal/errs"
	"github.com/qpay/securegate/internal/models"
	"github.com/qpay/securegate/internal/repository"
	"github.com/qpay/securegate/internal/vault"
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	ExistsByEmailOrMobile(ctx context.Context, email, mobile string) (bool, error)
	Create(ctx context.Context, u models.User) error
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

// TokenIssuer issues a signed session token for a login identifier.
type TokenIssuer interface {
	Issue(identifier string) (string, error)
}

var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// AuthService implements registration and login.
type AuthService struct {
	users  UserRepository
	tokens TokenIssuer
	log    *zap.Logger

	now func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserRepository, tokens TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log, now: time.Now}
}

// Register validates the input, rejects duplicate identities, encrypts
// the password and persists the new account.
func (s *AuthService) Register(ctx context.Context, name, email, mobile, password string) error {
	switch {
	case name == "" || len(name) > 50:
		return errs.Validation("name must be between 1 and 50 characters")
	case !strings.Contains(email, "@"):
		return errs.Validation("invalid email address")
	case !mobilePattern.MatchString(mobile):
		return errs.Validation("invalid mobile number")
	case len(password) < 6 || len(password) > 20:
		return errs.Validation("password must be between 6 and 20 characters")
	}

	exists, err := s.users.ExistsByEmailOrMobile(ctx, email, mobile)
	if err != nil {
		return errs.Internal("failed to check existing users", err)
	}
	if exists {
		return errs.Duplicate("Email or Mobile Number already registered")
	}

	secret, err := vault.Encrypt(password, nil)
	if err != nil {
		return errs.Internal("failed to encrypt credentials", err)
	}

	if err := s.users.Create(ctx, models.User{
		Name:          name,
		Email:         email,
		Mobile:        mobile,
		Password:      secret.Ciphertext,
		Nonce:         secret.Nonce,
		EncryptionKey: secret.Key,
		CreatedAt:     s.now().UTC(),
	}); err != nil {
		return errs.Internal("failed to save user", err)
	}

	s.log.Info("user registered", zap.String("email", email))
	return nil
}

// Login resolves the identifier, decrypts the stored credential blob,
// compares it with the supplied password and issues a session token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *models.User, error) {
	if identifier == "" || password == "" {
		return "", nil, errs.Validation("identifier and password are required")
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, errs.BadCredentials("User not found")
		}
		return "", nil, errs.Internal("failed to look up user", err)
	}

	if user.Nonce == "" || user.EncryptionKey == "" {
		return "", nil, errs.Internal("encryption metadata missing", nil)
	}

	stored, err := vault.Decrypt(user.Password, user.Nonce, user.EncryptionKey)
	if err != nil {
		if errors.Is(err, vault.ErrIntegrity) {
			return "", nil, errs.Integrity("stored credentials failed integrity check", err)
		}
		return "", nil, errs.Internal("failed to decrypt credentials", err)
	}

	if stored != password {
		return "", nil, errs.BadCredentials("Incorrect password")
	}

	accessToken, err := s.tokens.Issue(identifier)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info("user logged in", zap.String("identifier", identifier))
	return accessToken, user, nil
}
