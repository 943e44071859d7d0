package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/remote"
	"github.com/julianstephens/habitgrid/internal/storage"
)

func sampleDoc() models.Document {
	doc := models.NewDocument()
	doc.HabitsByMonth["2024-01"] = []string{"Run"}
	return doc
}

// fakeDirectory is an in-memory remote.Directory.
type fakeDirectory struct {
	mu       sync.Mutex
	profiles map[string]remote.Profile
	byEmail  map[string]string
	names    map[string]bool
	failAll  bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		profiles: make(map[string]remote.Profile),
		byEmail:  make(map[string]string),
		names:    make(map[string]bool),
	}
}

var errDirectoryDown = errors.New("directory unreachable")

func (d *fakeDirectory) FetchProfile(ctx context.Context, id string) (remote.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAll {
		return remote.Profile{}, errDirectoryDown
	}
	p, ok := d.profiles[id]
	if !ok {
		return remote.Profile{}, remote.ErrNotFound
	}
	return p, nil
}

func (d *fakeDirectory) CreateProfile(ctx context.Context, p remote.Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAll {
		return errDirectoryDown
	}
	if d.names[p.Username] {
		return remote.ErrUsernameTaken
	}
	d.names[p.Username] = true
	d.profiles[p.ID] = p
	d.byEmail[strings.ToLower(p.Email)] = p.ID
	return nil
}

func (d *fakeDirectory) LookupEmail(ctx context.Context, email string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAll {
		return "", errDirectoryDown
	}
	id, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return "", remote.ErrNotFound
	}
	return id, nil
}

func (d *fakeDirectory) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAll {
		return false, errDirectoryDown
	}
	return d.names[username], nil
}

func (d *fakeDirectory) SetUsername(ctx context.Context, id, username string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAll {
		return errDirectoryDown
	}
	if d.names[username] {
		return remote.ErrUsernameTaken
	}
	p, ok := d.profiles[id]
	if !ok {
		return remote.ErrNotFound
	}
	delete(d.names, p.Username)
	d.names[username] = true
	p.Username = username
	d.profiles[id] = p
	return nil
}

func (d *fakeDirectory) TouchLastLogin(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAll {
		return errDirectoryDown
	}
	p, ok := d.profiles[id]
	if !ok {
		return remote.ErrNotFound
	}
	p.LastLogin = time.Now().UTC()
	d.profiles[id] = p
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeDirectory, storage.Provider) {
	t.Helper()
	cache := storage.NewJSONStore(filepath.Join(t.TempDir(), "cache.json"), zap.NewNop())
	if err := cache.Init(); err != nil {
		t.Fatalf("cache init: %v", err)
	}
	dir := newFakeDirectory()
	return NewService(dir, cache, "test-secret", zap.NewNop()), dir, cache
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _, cache := newTestService(t)
	ctx := context.Background()

	ident, err := svc.SignUp(ctx, "Alice@Example.com", "hunter22", "Alice", "Alice A")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if ident.Username != "@alice" {
		t.Errorf("expected normalized username @alice, got %q", ident.Username)
	}
	if ident.Email != "alice@example.com" {
		t.Errorf("expected lowercased email, got %q", ident.Email)
	}

	// The session is persisted for the next start.
	if _, ok := cache.GetSession(); !ok {
		t.Fatal("expected session after sign-up")
	}

	got, err := svc.SignIn(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if got.ID != ident.ID {
		t.Error("sign-in resolved a different identity")
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "a@example.com", "correct", "alice", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SignIn(ctx, "a@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestSignUp_UsernameTaken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "a@example.com", "pw", "alice", ""); err != nil {
		t.Fatal(err)
	}
	_, err := svc.SignUp(ctx, "b@example.com", "pw", "ALICE", "")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken (case-insensitive), got %v", err)
	}
}

func TestSignUp_InvalidUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, bad := range []string{"ab", "has space", "dash-ed"} {
		if _, err := svc.SignUp(ctx, "a@example.com", "pw", bad, ""); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("SignUp username %q: expected ErrInvalidUsername, got %v", bad, err)
		}
	}
}

func TestRestore_FromPersistedSession(t *testing.T) {
	svc, dir, cache := newTestService(t)
	ctx := context.Background()

	ident, err := svc.SignUp(ctx, "a@example.com", "pw", "alice", "")
	if err != nil {
		t.Fatal(err)
	}

	// A fresh service over the same cache restores the identity.
	svc2 := NewService(dir, cache, "test-secret", zap.NewNop())
	if svc2.Resolved() {
		t.Fatal("new service must start unresolved")
	}
	svc2.Restore(ctx)
	if !svc2.Resolved() {
		t.Fatal("expected resolved after Restore")
	}
	got, ok := svc2.CurrentIdentity()
	if !ok || got.ID != ident.ID {
		t.Errorf("expected restored identity %s, got %+v ok=%v", ident.ID, got, ok)
	}
}

func TestRestore_OfflineKeepsCachedIdentity(t *testing.T) {
	svc, dir, cache := newTestService(t)
	ctx := context.Background()

	ident, err := svc.SignUp(ctx, "a@example.com", "pw", "alice", "")
	if err != nil {
		t.Fatal(err)
	}

	dir.failAll = true
	svc2 := NewService(dir, cache, "test-secret", zap.NewNop())
	svc2.Restore(ctx)
	got, ok := svc2.CurrentIdentity()
	if !ok || got.ID != ident.ID {
		t.Error("expected cached identity to survive an unreachable directory")
	}
}

func TestRestore_BadTokenSignsOut(t *testing.T) {
	_, dir, cache := newTestService(t)
	ctx := context.Background()

	svc := NewService(dir, cache, "secret-one", zap.NewNop())
	if _, err := svc.SignUp(ctx, "a@example.com", "pw", "alice", ""); err != nil {
		t.Fatal(err)
	}

	// A service with a different signing secret must reject the token.
	svc2 := NewService(dir, cache, "secret-two", zap.NewNop())
	svc2.Restore(ctx)
	if _, ok := svc2.CurrentIdentity(); ok {
		t.Error("expected invalid token to resolve as signed out")
	}
	if _, ok := cache.GetSession(); ok {
		t.Error("expected the stale session to be cleared")
	}
}

func TestSignOut_PreservesDocuments(t *testing.T) {
	svc, _, cache := newTestService(t)
	ctx := context.Background()

	ident, err := svc.SignUp(ctx, "a@example.com", "pw", "alice", "")
	if err != nil {
		t.Fatal(err)
	}

	doc := sampleDoc()
	if err := cache.WriteDocument(ident.ID, doc); err != nil {
		t.Fatal(err)
	}

	if err := svc.SignOut(); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, ok := svc.CurrentIdentity(); ok {
		t.Error("expected no identity after sign-out")
	}
	if _, ok := cache.GetSession(); ok {
		t.Error("expected session cleared after sign-out")
	}
	if _, ok := cache.ReadDocument(ident.ID); !ok {
		t.Error("sign-out must preserve cached documents")
	}
}

func TestSetUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "a@example.com", "pw", "alice", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SignUp(ctx, "b@example.com", "pw", "bob", ""); err != nil {
		t.Fatal(err)
	}
	// svc now holds bob's identity.
	if _, err := svc.SetUsername(ctx, "alice"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	ident, err := svc.SetUsername(ctx, "Bobby")
	if err != nil {
		t.Fatalf("SetUsername: %v", err)
	}
	if ident.Username != "@bobby" {
		t.Errorf("expected @bobby, got %q", ident.Username)
	}

	// The old name is released for others.
	available, err := svc.IsUsernameAvailable(ctx, "bob")
	if err != nil || !available {
		t.Errorf("expected released username to be available, got %v/%v", available, err)
	}
}

func TestNormalizeUsername(t *testing.T) {
	cases := map[string]string{
		"Alice":    "@alice",
		"@alice":   "@alice",
		" @Alice ": "@alice",
		"BOB_99":   "@bob_99",
	}
	for in, want := range cases {
		if got := NormalizeUsername(in); got != want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConcurrentSignInAndReads(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "a@example.com", "pw", "alice", ""); err != nil {
		t.Fatal(err)
	}

	// The TUI reads auth state from its render loop while sign-in runs on
	// another goroutine. Hammer both sides so the race detector sees any
	// unguarded access to the identity.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				svc.CurrentIdentity()
				svc.Resolved()
			}
		}
	}()

	for i := 0; i < 50; i++ {
		if _, err := svc.SignIn(ctx, "a@example.com", "pw"); err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		if err := svc.SignOut(); err != nil {
			t.Fatalf("SignOut: %v", err)
		}
	}
	close(done)
	wg.Wait()

	if _, ok := svc.CurrentIdentity(); ok {
		t.Error("expected signed out after the final SignOut")
	}
}
