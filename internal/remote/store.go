// Package remote is the boundary to the authoritative per-user document
// store and the user directory behind sign-in. Everything here may be slow
// or unreachable; callers are expected to degrade to local state.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/habitgrid/internal/models"
)

// ErrNotFound reports that the requested document or profile does not
// exist. Callers use it to distinguish first-login migration (and the
// patch-falls-back-to-create path) from transient failures.
var ErrNotFound = errors.New("remote: not found")

// ErrUsernameTaken reports a failed username claim.
var ErrUsernameTaken = errors.New("remote: username already taken")

// Store is the authoritative habit-document store.
type Store interface {
	FetchDocument(ctx context.Context, identityID string) (models.Document, error)
	CreateDocument(ctx context.Context, identityID string, doc models.Document) error
	PatchDocument(ctx context.Context, identityID string, doc models.Document) error
}

// Profile is the directory record backing an account.
type Profile struct {
	models.Identity
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
}

// Directory is the user-account side of the remote service: profiles,
// the email index used at sign-in, and username uniqueness.
type Directory interface {
	FetchProfile(ctx context.Context, identityID string) (Profile, error)
	// CreateProfile stores the profile and atomically claims its username.
	CreateProfile(ctx context.Context, p Profile) error
	LookupEmail(ctx context.Context, email string) (identityID string, err error)
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	// SetUsername claims the new username, updates the profile, and
	// releases the old claim.
	SetUsername(ctx context.Context, identityID, username string) error
	TouchLastLogin(ctx context.Context, identityID string) error
}
