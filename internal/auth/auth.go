// Package auth implements the authenticator: credential sign-up/sign-in
// against the remote user directory, with the session persisted locally so
// a restart resolves the identity without a network round trip.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/remote"
	"github.com/julianstephens/habitgrid/internal/storage"
	"github.com/julianstephens/habitgrid/internal/validation"
)

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotSignedIn        = errors.New("not signed in")
)

// Service resolves and mutates the current identity. It is the one
// component whose errors propagate to the user; everything storage-side
// stays absorbed in the repository.
type Service struct {
	dir    remote.Directory
	cache  storage.Provider
	log    *zap.Logger
	secret []byte

	// mu guards identity and resolved. Sign-in runs off the render
	// loop's goroutine in the TUI, which reads both concurrently.
	mu       sync.Mutex
	identity *models.Identity
	resolved bool
}

func NewService(dir remote.Directory, cache storage.Provider, secret string, log *zap.Logger) *Service {
	return &Service{
		dir:    dir,
		cache:  cache,
		log:    log,
		secret: []byte(secret),
	}
}

// Resolved reports whether the auth state has been determined, as opposed
// to "still restoring". Callers must not treat an unresolved nil identity
// as signed out.
func (s *Service) Resolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// CurrentIdentity returns the signed-in identity, if any.
func (s *Service) CurrentIdentity() (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// setIdentity publishes the new auth state. nil means signed out; either
// way the state counts as resolved.
func (s *Service) setIdentity(ident *models.Identity) {
	s.mu.Lock()
	s.identity = ident
	s.resolved = true
	s.mu.Unlock()
}

// Restore resolves the identity from the locally persisted session. An
// expired or malformed token resolves to signed out. A reachable directory
// refreshes the profile; an unreachable one keeps the cached identity so
// startup never blocks on the network.
func (s *Service) Restore(ctx context.Context) {
	sess, ok := s.cache.GetSession()
	if !ok {
		s.setIdentity(nil)
		return
	}

	id, err := s.parseToken(sess.Token)
	if err != nil || id != sess.Identity.ID {
		s.log.Info("stored session invalid, signing out", zap.Error(err))
		if err := s.cache.ClearSession(); err != nil {
			s.log.Warn("failed to clear stale session", zap.Error(err))
		}
		s.setIdentity(nil)
		return
	}

	ident := sess.Identity

	if p, err := s.dir.FetchProfile(ctx, id); err == nil {
		ident = models.Identity{
			ID:          p.ID,
			Email:       p.Email,
			Username:    p.Username,
			DisplayName: p.DisplayName,
		}
		s.persistSession(ident, sess.Token)
	} else if !errors.Is(err, remote.ErrNotFound) {
		s.log.Warn("profile refresh failed, keeping cached identity", zap.Error(err))
	}

	s.setIdentity(&ident)
}

// SignUp creates an account. The username is normalized to the stored
// form (lowercase, "@" prefix) after validation.
func (s *Service) SignUp(ctx context.Context, email, password, username, displayName string) (models.Identity, error) {
	if err := validation.Username(username); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidUsername, err)
	}
	normalized := NormalizeUsername(username)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 8)
	if err != nil {
		return models.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	if displayName == "" {
		displayName = strings.TrimPrefix(normalized, "@")
	}

	p := remote.Profile{
		Identity: models.Identity{
			ID:          uuid.NewString(),
			Email:       strings.ToLower(email),
			Username:    normalized,
			DisplayName: displayName,
		},
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
		LastLogin:    time.Now().UTC(),
	}

	if err := s.dir.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, remote.ErrUsernameTaken) {
			return models.Identity{}, ErrUsernameTaken
		}
		return models.Identity{}, fmt.Errorf("create profile: %w", err)
	}

	return s.adopt(p.Identity)
}

// SignIn authenticates with email and password.
func (s *Service) SignIn(ctx context.Context, email, password string) (models.Identity, error) {
	id, err := s.dir.LookupEmail(ctx, email)
	if errors.Is(err, remote.ErrNotFound) {
		return models.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("lookup account: %w", err)
	}

	p, err := s.dir.FetchProfile(ctx, id)
	if err != nil {
		return models.Identity{}, fmt.Errorf("fetch profile: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return models.Identity{}, ErrInvalidCredentials
	}

	if err := s.dir.TouchLastLogin(ctx, id); err != nil {
		s.log.Warn("failed to record last login", zap.Error(err))
	}

	return s.adopt(p.Identity)
}

// SignOut clears the session. The departing identity's cached documents
// are preserved for an instant re-hydrate on the next sign-in.
func (s *Service) SignOut() error {
	s.setIdentity(nil)
	return s.cache.ClearSession()
}

// IsUsernameAvailable checks a candidate against the directory. Invalid
// candidates are reported as unavailable with the validation reason.
func (s *Service) IsUsernameAvailable(ctx context.Context, candidate string) (bool, error) {
	if err := validation.Username(candidate); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidUsername, err)
	}
	taken, err := s.dir.IsUsernameTaken(ctx, NormalizeUsername(candidate))
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return !taken, nil
}

// SetUsername changes the signed-in user's username.
func (s *Service) SetUsername(ctx context.Context, candidate string) (models.Identity, error) {
	ident, ok := s.CurrentIdentity()
	if !ok {
		return models.Identity{}, ErrNotSignedIn
	}
	if err := validation.Username(candidate); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidUsername, err)
	}
	normalized := NormalizeUsername(candidate)

	if err := s.dir.SetUsername(ctx, ident.ID, normalized); err != nil {
		if errors.Is(err, remote.ErrUsernameTaken) {
			return models.Identity{}, ErrUsernameTaken
		}
		return models.Identity{}, fmt.Errorf("set username: %w", err)
	}

	ident.Username = normalized
	s.setIdentity(&ident)
	if sess, ok := s.cache.GetSession(); ok {
		s.persistSession(ident, sess.Token)
	}
	return ident, nil
}

func (s *Service) adopt(ident models.Identity) (models.Identity, error) {
	s.setIdentity(&ident)

	token, err := s.issueToken(ident.ID)
	if err != nil {
		return models.Identity{}, fmt.Errorf("issue session token: %w", err)
	}
	s.persistSession(ident, token)
	return ident, nil
}

func (s *Service) persistSession(ident models.Identity, token string) {
	err := s.cache.SaveSession(storage.Session{
		Token:    token,
		Identity: ident,
	})
	if err != nil {
		// Session persistence failing only costs a re-login next start.
		s.log.Warn("failed to persist session", zap.Error(err))
	}
}

// NormalizeUsername lowercases the candidate and guarantees exactly one
// "@" prefix, the form usernames are stored and displayed in.
func NormalizeUsername(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return "@" + strings.TrimPrefix(name, "@")
}
