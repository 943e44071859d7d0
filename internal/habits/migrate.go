package habits

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/julianstephens/habitgrid/internal/models"
)

// LegacyCacheKey is the cache namespace versions without accounts wrote
// to. It is read exactly once per account, during first-login migration,
// and nowhere else.
const LegacyCacheKey = "local"

// firstLoginMigration runs when the remote store has no document for the
// identity: build an initial document from whatever local data exists,
// create it remotely, then adopt it. Called without r.mu held.
func (r *Repository) firstLoginMigration(ctx context.Context, identityID string, epoch int) {
	r.mu.Lock()
	if r.epoch != epoch {
		r.mu.Unlock()
		return
	}
	doc, source := r.buildInitialDocument(identityID)
	r.mu.Unlock()

	// Create is best effort: an offline first login still adopts the
	// document locally and the debounced save path creates it later.
	if err := r.remote.CreateDocument(ctx, identityID, doc.Clone()); err != nil {
		r.log.Warn("initial document create failed",
			zap.String("identity", identityID),
			zap.Error(err),
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != epoch {
		return
	}
	if err := r.cache.WriteDocument(identityID, doc.Clone()); err != nil {
		r.log.Warn("cache write of initial document failed", zap.Error(err))
	}
	r.doc = doc
	r.log.Info("first-login migration complete",
		zap.String("identity", identityID),
		zap.String("source", source),
	)
}

// buildInitialDocument picks the seed for a brand-new remote document:
// the identity's own cache entry if present, else the legacy pre-account
// namespace, else the default seed. Caller holds r.mu.
func (r *Repository) buildInitialDocument(identityID string) (models.Document, string) {
	if doc, ok := r.cache.ReadDocument(identityID); ok {
		return doc, "cache"
	}
	if doc, ok := r.cache.ReadDocument(LegacyCacheKey); ok {
		return doc, "legacy"
	}
	return models.DefaultSeed(time.Now().Year()), "seed"
}
