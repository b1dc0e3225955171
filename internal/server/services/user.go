// Package services contains server-side business logic. This file implements
// UserService, which handles registration, email verification, login and
// logout, and authenticates bearer tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/blogapi/internal/common"
	"github.com/dmitrijs2005/blogapi/internal/dbx"
	"github.com/dmitrijs2005/blogapi/internal/logging"
	"github.com/dmitrijs2005/blogapi/internal/server/auth"
	"github.com/dmitrijs2005/blogapi/internal/server/mailer"
	"github.com/dmitrijs2005/blogapi/internal/server/metrics"
	"github.com/dmitrijs2005/blogapi/internal/server/models"
	"github.com/dmitrijs2005/blogapi/internal/server/repositories/repomanager"
)

// LoginResult is returned by a successful login. Token is the bearer token
// for protected routes; Session backs the session cookie used by logout.
type LoginResult struct {
	Token   string
	User    *models.User
	Session *models.Session
}

// UserService drives the account lifecycle:
// unregistered -> pending verification -> verified.
// The state is derived from the stored is_verified flag.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	mailer      mailer.Mailer
	log         logging.Logger
	metrics     *metrics.Metrics
	publicURL   string
	sessionTTL  time.Duration
}

// UserServiceOptions carries the settings UserService needs from config.
type UserServiceOptions struct {
	PublicURL  string
	SessionTTL time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService,
	mail mailer.Mailer, log logging.Logger, met *metrics.Metrics, opts UserServiceOptions) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		mailer:      mail,
		log:         log.With("module", "users"),
		metrics:     met,
		publicURL:   opts.PublicURL,
		sessionTTL:  opts.SessionTTL,
	}
}

// Register stores a new unverified user and emails a verification link.
// The user row is kept even when the email cannot be sent.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	s.metrics.UserRegistered()

	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID}, auth.PurposeEmailVerification)
	if err != nil {
		return nil, fmt.Errorf("error issuing verification token: %w", err)
	}

	if err := s.mailer.Send(ctx, mailer.VerificationMessage(user.Email, s.publicURL, token)); err != nil {
		s.metrics.MailFailed()
		s.log.Error(ctx, "verification email not sent", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// Login checks credentials and starts a session. Unknown emails and wrong
// passwords both yield common.ErrInvalidCredentials; an unverified account
// yields common.ErrUnverifiedEmail before the password is checked.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		s.metrics.LoginAttempt(metrics.LoginInvalid)
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.DummyCompare(password)
			s.metrics.LoginAttempt(metrics.LoginInvalid)
			return nil, common.ErrInvalidCredentials
		}
		s.metrics.LoginAttempt(metrics.LoginError)
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !user.IsVerified {
		s.metrics.LoginAttempt(metrics.LoginUnverified)
		return nil, common.ErrUnverifiedEmail
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.metrics.LoginAttempt(metrics.LoginInvalid)
			return nil, err
		}
		s.metrics.LoginAttempt(metrics.LoginError)
		return nil, fmt.Errorf("error comparing password: %w", err)
	}

	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, UserName: user.Name}, auth.PurposeLogin)
	if err != nil {
		s.metrics.LoginAttempt(metrics.LoginError)
		return nil, fmt.Errorf("error issuing login token: %w", err)
	}

	session, err := s.repomanager.Sessions(s.db).Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		s.metrics.LoginAttempt(metrics.LoginError)
		return nil, fmt.Errorf("error starting session: %w", err)
	}

	s.metrics.LoginAttempt(metrics.LoginSuccess)
	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{Token: token, User: user, Session: session}, nil
}

// Logout ends the session with the given id. A missing or unknown session
// is not an error.
func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// Session returns the live session with the given id.
func (s *UserService) Session(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.repomanager.Sessions(s.db).Find(ctx, sessionID)
}

// PruneSessions deletes expired sessions.
func (s *UserService) PruneSessions(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("error pruning sessions: %w", err)
	}
	return n, nil
}

// RunSessionPruner calls PruneSessions every interval until ctx is done.
// Failures are logged and retried on the next tick.
func (s *UserService) RunSessionPruner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PruneSessions(ctx)
			if err != nil {
				s.log.Error(ctx, "session pruning failed", "error", err)
				continue
			}
			if n > 0 {
				s.log.Debug(ctx, "expired sessions pruned", "count", n)
			}
		}
	}
}

// VerifyEmail marks the user named by a verification token as verified.
// Token failures keep their kind (expired, malformed, bad signature).
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrMissingToken
	}

	claims, err := s.tokens.Verify(token, auth.PurposeEmailVerification)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if _, err := repo.GetByID(ctx, claims.UserID); err != nil {
			return err
		}
		return repo.SetVerified(ctx, claims.UserID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error verifying user: %w", err)
	}

	s.log.Info(ctx, "email verified", "user_id", claims.UserID)
	return nil
}

// Authenticate verifies a login token and returns the identity it carries.
// Verification state is not re-checked.
func (s *UserService) Authenticate(token string) (*auth.Identity, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}
	claims, err := s.tokens.Verify(token, auth.PurposeLogin)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}
