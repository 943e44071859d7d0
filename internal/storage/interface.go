package storage

import "github.com/julianstephens/habitgrid/internal/models"

// Session is the locally persisted sign-in state: the auth token plus the
// last known identity, kept so the UI can show the signed-in user before
// the token has been re-verified.
type Session struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

// Provider is the local cache: durable, synchronous, per-identity storage
// of whole-document snapshots. Reads fail soft: a malformed stored value
// is treated as absent, never surfaced as an error.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Documents, keyed by stable identity id (never by username)
	ReadDocument(identityID string) (models.Document, bool)
	WriteDocument(identityID string, doc models.Document) error
	Clear(identityID string) error

	// Session
	GetSession() (Session, bool)
	SaveSession(Session) error
	ClearSession() error

	// Utils
	GetConfigPath() string
}
