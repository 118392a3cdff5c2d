package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/deepchat/internal/events"
	"github.com/Skotchmaster/deepchat/internal/hash"
	"github.com/Skotchmaster/deepchat/internal/logging"
	"github.com/Skotchmaster/deepchat/internal/models"
	"github.com/Skotchmaster/deepchat/internal/store"
	"github.com/Skotchmaster/deepchat/internal/tokens"
)

// Service owns the session lifecycle. Sessions are keyed by username, so
// there is at most one live session per user: login, registration and refresh
// all replace the record wholesale.
type Service struct {
	Store  store.Store
	Codec  *tokens.Codec
	Events events.Publisher
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", req.Username)

	var existing models.User
	err := s.Store.Get(ctx, store.Users, req.Username, &existing)
	if err == nil {
		l.Warn("register_failed", "reason", "username taken")
		return nil, ErrDuplicateIdentity
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: pwHash,
	}
	if err := s.Store.Upsert(ctx, store.Users, user.Username, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issuePair(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserTopic, user.Username, map[string]any{
		"type":     "user_registered",
		"username": user.Username,
	})

	l.Info("register_successful")
	return pair, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	var user models.User
	if err := s.Store.Get(ctx, store.Users, username, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("login_failed", "reason", "invalid username or password")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "invalid username or password")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserTopic, user.Username, map[string]any{
		"type":     "user_logged_in",
		"username": user.Username,
	})

	l.Info("login_successful")
	return pair, nil
}

// Refresh rotates the pair belonging to the session that currently holds
// refreshToken. Staleness is judged against the session's recorded
// access-token expiry, not the refresh token's own embedded one; a signed but
// already-rotated token fails the lookup and is rejected the same way as a
// forged one.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	var sess models.Session
	if err := s.Store.FindOne(ctx, store.Sessions, "refresh_token", refreshToken, &sess); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("refresh_failed", "reason", "unknown refresh token")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if time.Now().After(sess.AccessExpiresAt) {
		l.Warn("refresh_failed", "reason", "session expired", "username", sess.Username)
		return nil, ErrStaleSession
	}

	// The new record is keyed by the username from the old one, so the
	// session's primary key stays stable across rotations.
	pair, err := s.issuePair(ctx, sess.Username)
	if err != nil {
		return nil, err
	}

	l.Info("refresh_successful", "username", sess.Username)
	return pair, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	var sess models.Session
	if err := s.Store.FindOne(ctx, store.Sessions, "refresh_token", refreshToken, &sess); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("logout_failed", "reason", "unknown refresh token")
			return ErrInvalidToken
		}
		return fmt.Errorf("lookup session: %w", err)
	}

	// Lookup and delete are two steps. A login or refresh landing between
	// them replaces the session, and the delete below removes that successor
	// instead; the caller still ends up logged out.
	present, err := s.Store.Delete(ctx, store.Sessions, sess.Username)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if !present {
		return ErrInvalidToken
	}

	l.Info("logout_successful", "username", sess.Username)
	return nil
}

// issuePair signs a fresh access/refresh pair and replaces the user's session
// record with it.
func (s *Service) issuePair(ctx context.Context, username string) (*models.TokenPair, error) {
	accessToken, accessExp, err := s.Codec.IssueAccess(username)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, _, err := s.Codec.IssueRefresh(username)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	sess := models.Session{
		Username:        username,
		RefreshToken:    refreshToken,
		AccessExpiresAt: accessExp,
		CreatedAt:       time.Now(),
	}
	if err := s.Store.Upsert(ctx, store.Sessions, username, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		TokenType:       "bearer",
		AccessExpiresAt: accessExp,
	}, nil
}

func (s *Service) publish(ctx context.Context, topic, key string, event map[string]any) {
	if s.Events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.Events.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "topic", topic, "error", err)
	}
}
