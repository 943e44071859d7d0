// Package habits owns the canonical in-memory copy of a user's habit
// document and reconciles it with the local cache and the remote store.
// The local cache unblocks the UI instantly; the remote store is
// authoritative once a fetch succeeds; every mutation is optimistic.
package habits

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/julianstephens/habitgrid/internal/datekit"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/remote"
	"github.com/julianstephens/habitgrid/internal/storage"
)

// DefaultDebounceWindow is the quiet period a remote write waits for
// after the most recent mutation.
const DefaultDebounceWindow = 500 * time.Millisecond

// Stats is the result of a year completion query.
type Stats struct {
	Completed int
	Total     int
}

// Repository is the session state machine. It is safe for use from a UI
// event loop plus the background sync goroutines it spawns itself.
type Repository struct {
	mu     sync.Mutex
	cache  storage.Provider
	remote remote.Store
	log    *zap.Logger
	saver  *debouncer

	doc      models.Document
	identity *models.Identity
	ready    bool

	// epoch increments on every identity transition; in-flight fetches and
	// pending writes carry the epoch they were started under and discard
	// themselves when it no longer matches.
	epoch    int
	syncDone chan struct{}
}

// Option configures a Repository.
type Option func(*Repository)

// WithDebounceWindow overrides the remote-write quiet window.
func WithDebounceWindow(d time.Duration) Option {
	return func(r *Repository) {
		r.saver = newDebouncer(d)
	}
}

// New builds a repository around the given cache and remote store. The
// repository starts unresolved: not ready, holding an empty document.
func New(cache storage.Provider, rs remote.Store, log *zap.Logger, opts ...Option) *Repository {
	done := make(chan struct{})
	close(done)
	r := &Repository{
		cache:    cache,
		remote:   rs,
		log:      log,
		saver:    newDebouncer(DefaultDebounceWindow),
		doc:      models.NewDocument(),
		syncDone: done,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ready reports whether the repository has resolved far enough to serve
// reads and accept mutations.
func (r *Repository) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Identity returns the identity the current session belongs to, if any.
func (r *Repository) Identity() (models.Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.identity == nil {
		return models.Identity{}, false
	}
	return *r.identity, true
}

// Resolve reacts to the auth state becoming known. A nil identity is
// "signed out": the in-memory state resets to the default seed with no
// storage I/O. A concrete identity hydrates synchronously from the cache
// (provisional ready) and then reconciles against the remote store in the
// background.
func (r *Repository) Resolve(identity *models.Identity) {
	r.mu.Lock()

	r.epoch++
	r.saver.cancel()

	if identity == nil {
		r.identity = nil
		r.doc = models.DefaultSeed(time.Now().Year())
		r.ready = true
		done := make(chan struct{})
		close(done)
		r.syncDone = done
		r.mu.Unlock()
		return
	}

	ident := *identity
	r.identity = &ident

	// Cache hydrate gives the UI something to render before any network
	// round trip. A miss leaves the default seed in place provisionally.
	if cached, ok := r.cache.ReadDocument(ident.ID); ok {
		r.doc = cached
	} else {
		r.doc = models.DefaultSeed(time.Now().Year())
	}
	r.ready = true

	epoch := r.epoch
	done := make(chan struct{})
	r.syncDone = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		r.reconcile(context.Background(), ident.ID, epoch)
	}()
}

// SignOut transitions back to the seeded signed-out state. The departing
// identity's cache entries are preserved for the next sign-in.
func (r *Repository) SignOut() {
	r.Resolve(nil)
}

// WaitForSync blocks until the in-flight remote reconcile (if any)
// finishes, or the context expires.
func (r *Repository) WaitForSync(ctx context.Context) error {
	r.mu.Lock()
	done := r.syncDone
	r.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SyncNow re-runs the remote reconcile synchronously. It is the manual
// refresh hook; the repository never retries failed fetches on its own.
func (r *Repository) SyncNow(ctx context.Context) {
	r.mu.Lock()
	if r.identity == nil {
		r.mu.Unlock()
		return
	}
	id := r.identity.ID
	epoch := r.epoch
	r.mu.Unlock()

	r.reconcile(ctx, id, epoch)
}

// reconcile fetches the authoritative document and folds the result into
// local state. Remote wins over whatever the cache hydrated; a missing
// remote document triggers first-login migration; a failed fetch leaves
// local state standing.
func (r *Repository) reconcile(ctx context.Context, identityID string, epoch int) {
	fetched, err := r.remote.FetchDocument(ctx, identityID)

	switch {
	case err == nil:
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.epoch != epoch {
			r.log.Debug("discarding stale remote fetch", zap.String("identity", identityID))
			return
		}
		r.doc = fetched
		if err := r.cache.WriteDocument(identityID, fetched.Clone()); err != nil {
			r.log.Warn("cache write after sync failed", zap.Error(err))
		}
		r.log.Debug("synced from remote", zap.String("identity", identityID))

	case errors.Is(err, remote.ErrNotFound):
		r.firstLoginMigration(ctx, identityID, epoch)

	default:
		// Stay on local state; retry is the caller's responsibility.
		r.log.Warn("remote fetch failed, staying local",
			zap.String("identity", identityID),
			zap.Error(err),
		)
	}
}

// Mutations. All of them: apply in memory, snapshot to the cache, and
// schedule the debounced remote write. Malformed input is a silent no-op.

// ToggleCompletion flips habitName's membership in the completion set for
// date. Two calls in a row restore the original state.
func (r *Repository) ToggleCompletion(date models.Date, habitName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return
	}

	done := r.doc.Completions[date]
	idx := -1
	for i, h := range done {
		if h == habitName {
			idx = i
			break
		}
	}
	if idx >= 0 {
		done = append(done[:idx], done[idx+1:]...)
	} else {
		done = append(done, habitName)
	}
	if len(done) == 0 {
		delete(r.doc.Completions, date)
	} else {
		r.doc.Completions[date] = done
	}

	r.persistLocked()
}

// SetHabitName renames the habit at index within monthKey and rewrites
// every occurrence of the old name in that month's completion log. The
// habit list and the completion log change under one lock hold, so
// readers never observe one without the other.
func (r *Repository) SetHabitName(monthKey models.Month, index int, newName string) {
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return
	}

	habitList := r.doc.HabitsByMonth[monthKey]
	if index < 0 || index >= len(habitList) {
		return
	}
	oldName := habitList[index]
	if oldName == trimmed {
		return
	}
	habitList[index] = trimmed

	// Completions are keyed by name, so a rename is a month-scoped
	// migration of the historical records.
	for date, done := range r.doc.Completions {
		if !date.In(monthKey) {
			continue
		}
		for i, h := range done {
			if h == oldName {
				done[i] = trimmed
			}
		}
	}

	r.persistLocked()
}

// AddHabit appends a placeholder habit to monthKey's sequence.
func (r *Repository) AddHabit(monthKey models.Month) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return
	}

	habitList := r.doc.HabitsByMonth[monthKey]
	r.doc.HabitsByMonth[monthKey] = append(habitList, placeholderName(len(habitList)+1))

	r.persistLocked()
}

// DeleteHabit removes the habit at index from monthKey's sequence and
// purges its name from that month's completion log. Out-of-range indexes
// are a no-op.
func (r *Repository) DeleteHabit(monthKey models.Month, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return
	}

	habitList := r.doc.HabitsByMonth[monthKey]
	if index < 0 || index >= len(habitList) {
		return
	}
	name := habitList[index]
	r.doc.HabitsByMonth[monthKey] = append(habitList[:index], habitList[index+1:]...)

	for date, done := range r.doc.Completions {
		if !date.In(monthKey) {
			continue
		}
		kept := done[:0]
		for _, h := range done {
			if h != name {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(r.doc.Completions, date)
		} else {
			r.doc.Completions[date] = kept
		}
	}

	r.persistLocked()
}

// SetProductiveHours stores the raw hours text for date. Validation is a
// UI-edge concern; the one rule here is that empty string means "cleared".
func (r *Repository) SetProductiveHours(date models.Date, rawText string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return
	}

	if rawText == "" {
		delete(r.doc.ProductiveHours, date)
	} else {
		r.doc.ProductiveHours[date] = rawText
	}

	r.persistLocked()
}

// Derived queries.

// HabitsForMonth returns the ordered habit names for a month. A month
// with no entry has zero habits.
func (r *Repository) HabitsForMonth(monthKey models.Month) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.doc.HabitsByMonth[monthKey]...)
}

// IsCompleted reports whether habitName is marked complete on date.
func (r *Repository) IsCompleted(date models.Date, habitName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.doc.Completions[date] {
		if h == habitName {
			return true
		}
	}
	return false
}

// HoursFor returns the raw productive-hours text for date, empty if none.
func (r *Repository) HoursFor(date models.Date) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc.ProductiveHours[date]
}

// YearCompletionStats counts completed versus possible (date, habit)
// pairs over the reference date's year, up to and including the reference
// date. Future dates count on neither side.
func (r *Repository) YearCompletionStats(reference models.Date) Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats Stats
	for _, date := range datekit.YearDates(reference.Month().Year()) {
		if datekit.Classify(date, reference) == datekit.Future {
			break
		}
		habitList := r.doc.HabitsByMonth[date.Month()]
		stats.Total += len(habitList)
		done := r.doc.Completions[date]
		for _, h := range habitList {
			for _, d := range done {
				if d == h {
					stats.Completed++
					break
				}
			}
		}
	}
	return stats
}

// Snapshot returns a deep copy of the current document, for rendering
// whole grids without repeated lock traffic.
func (r *Repository) Snapshot() models.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc.Clone()
}

// Flush forces a pending debounced remote write through immediately,
// under the caller's context. One-shot CLI commands call this before
// exiting; otherwise the process could die inside the quiet window and
// drop the write.
func (r *Repository) Flush(ctx context.Context) {
	r.saver.flush(ctx)
}

// persistLocked is the fan-out tail of every mutation: cache write now,
// remote write after the quiet window. Caller holds r.mu. Signed-out
// sessions mutate in memory only.
func (r *Repository) persistLocked() {
	r.doc.UpdatedAt = time.Now().UTC()
	if r.identity == nil {
		return
	}

	id := r.identity.ID
	epoch := r.epoch

	if err := r.cache.WriteDocument(id, r.doc.Clone()); err != nil {
		r.log.Warn("cache write failed", zap.String("identity", id), zap.Error(err))
	}

	r.saver.schedule(func(ctx context.Context) {
		r.saveRemote(ctx, id, epoch)
	})
}

// saveRemote sends the current snapshot to the remote store, falling back
// from patch to create when the document was never created. Failures are
// logged and dropped; local state remains authoritative for the session.
func (r *Repository) saveRemote(ctx context.Context, identityID string, epoch int) {
	r.mu.Lock()
	if r.epoch != epoch || r.identity == nil || r.identity.ID != identityID {
		r.mu.Unlock()
		return
	}
	snapshot := r.doc.Clone()
	r.mu.Unlock()

	err := r.remote.PatchDocument(ctx, identityID, snapshot)
	if errors.Is(err, remote.ErrNotFound) {
		err = r.remote.CreateDocument(ctx, identityID, snapshot)
	}
	if err != nil {
		r.log.Warn("remote save failed",
			zap.String("identity", identityID),
			zap.Error(err),
		)
		return
	}
	r.log.Debug("remote save ok", zap.String("identity", identityID))
}

func placeholderName(n int) string {
	return "Habit " + strconv.Itoa(n)
}
