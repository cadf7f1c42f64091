package accounts

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sv1nxmmvt/fincontrol/internal/entity/user"
	"github.com/sv1nxmmvt/fincontrol/internal/logger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/errs"
)

const minPasswordLen = 6

const (
	credentialsRequiredMsg = "login and password are required"
	passwordTooShortMsg    = "password must be at least 6 characters"
	invalidCredentialsMsg  = "invalid login or password"
)

type userStorage interface {
	// CreateUser returns a conflict error when the login is already taken.
	// The uniqueness check and the insert are atomic.
	CreateUser(ctx context.Context, rec user.Record) error
	GetUserByLogin(ctx context.Context, login string) (user.Record, bool, error)
}

type passwordHasher interface {
	Hash(password string) string
	Verify(password, digest string) bool
}

type Service struct {
	storage userStorage
	hasher  passwordHasher
}

func NewService(storage userStorage, hasher passwordHasher) *Service {
	return &Service{
		storage: storage,
		hasher:  hasher,
	}
}

func (s *Service) Register(ctx context.Context, login, password string) error {
	if isBlank(login) || isBlank(password) {
		return errs.Validation(credentialsRequiredMsg)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return errs.Validation(passwordTooShortMsg)
	}

	rec := user.Record{
		ID:           uuid.New(),
		Login:        login,
		PasswordHash: s.hasher.Hash(password),
	}
	if err := s.storage.CreateUser(ctx, rec); err != nil {
		if errs.IsKind(err, errs.KindConflict) {
			return err
		}
		return errors.Wrap(err, "register")
	}

	logger.Info("user registered", zap.String("login", login))
	return nil
}

// Authenticate reports the same error for an unknown login and a wrong
// password, so callers cannot probe which logins exist.
func (s *Service) Authenticate(ctx context.Context, login, password string) (user.Identity, error) {
	if isBlank(login) || isBlank(password) {
		return user.Identity{}, errs.Validation(credentialsRequiredMsg)
	}

	rec, found, err := s.storage.GetUserByLogin(ctx, login)
	if err != nil {
		return user.Identity{}, errors.Wrap(err, "authenticate")
	}
	if !found || !s.hasher.Verify(password, rec.PasswordHash) {
		return user.Identity{}, errs.Authentication(invalidCredentialsMsg)
	}

	return user.Identity{UserID: rec.ID, Login: rec.Login}, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
