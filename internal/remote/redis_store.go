package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/julianstephens/habitgrid/internal/models"
)

const keyPrefix = "habitgrid:"

// RedisStore implements Store and Directory against a Redis instance.
// Documents and profiles are stored as JSON strings; username uniqueness
// rides on SETNX.
type RedisStore struct {
	rdb     *redis.Client
	log     *zap.Logger
	timeout time.Duration
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

func NewRedisStore(opts RedisOptions, log *zap.Logger) *RedisStore {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisStore{
		rdb:     rdb,
		log:     log,
		timeout: opts.Timeout,
	}
}

// Ping checks connectivity; used by the doctor command.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func docKey(identityID string) string     { return keyPrefix + "doc:" + identityID }
func profileKey(identityID string) string { return keyPrefix + "user:" + identityID }
func emailKey(email string) string        { return keyPrefix + "email:" + strings.ToLower(email) }
func usernameKey(username string) string  { return keyPrefix + "username:" + strings.ToLower(username) }

func (s *RedisStore) FetchDocument(ctx context.Context, identityID string) (models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := s.rdb.Get(ctx, docKey(identityID)).Result()
	if err == redis.Nil {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("fetch document: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return models.Document{}, fmt.Errorf("decode document: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

func (s *RedisStore) CreateDocument(ctx context.Context, identityID string, doc models.Document) error {
	return s.writeDocument(ctx, identityID, doc)
}

func (s *RedisStore) PatchDocument(ctx context.Context, identityID string, doc models.Document) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Patches are whole-document here (last writer wins), but a patch on a
	// document that was never created must surface NOT_FOUND so the caller
	// can fall back to create.
	exists, err := s.rdb.Exists(ctx, docKey(identityID)).Result()
	if err != nil {
		return fmt.Errorf("patch document: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	return s.writeDocument(ctx, identityID, doc)
}

func (s *RedisStore) writeDocument(ctx context.Context, identityID string, doc models.Document) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	doc.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.rdb.Set(ctx, docKey(identityID), payload, 0).Err(); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	s.log.Debug("document written",
		zap.String("identity", identityID),
		zap.Time("updated_at", doc.UpdatedAt),
	)
	return nil
}

func (s *RedisStore) FetchProfile(ctx context.Context, identityID string) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := s.rdb.Get(ctx, profileKey(identityID)).Result()
	if err == redis.Nil {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

func (s *RedisStore) CreateProfile(ctx context.Context, p Profile) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Claim the username first; a lost race must not leave a profile behind.
	claimed, err := s.rdb.SetNX(ctx, usernameKey(p.Username), p.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("claim username: %w", err)
	}
	if !claimed {
		return ErrUsernameTaken
	}

	if err := s.saveProfile(ctx, p); err != nil {
		s.rdb.Del(ctx, usernameKey(p.Username))
		return err
	}
	if err := s.rdb.Set(ctx, emailKey(p.Email), p.ID, 0).Err(); err != nil {
		return fmt.Errorf("index email: %w", err)
	}
	return nil
}

func (s *RedisStore) saveProfile(ctx context.Context, p Profile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.rdb.Set(ctx, profileKey(p.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

func (s *RedisStore) LookupEmail(ctx context.Context, email string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	id, err := s.rdb.Get(ctx, emailKey(email)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup email: %w", err)
	}
	return id, nil
}

func (s *RedisStore) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.rdb.Exists(ctx, usernameKey(username)).Result()
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) SetUsername(ctx context.Context, identityID, username string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.FetchProfile(ctx, identityID)
	if err != nil {
		return err
	}
	if strings.EqualFold(p.Username, username) {
		return nil
	}

	claimed, err := s.rdb.SetNX(ctx, usernameKey(username), identityID, 0).Result()
	if err != nil {
		return fmt.Errorf("claim username: %w", err)
	}
	if !claimed {
		return ErrUsernameTaken
	}

	old := p.Username
	p.Username = username
	if err := s.saveProfile(ctx, p); err != nil {
		s.rdb.Del(ctx, usernameKey(username))
		return err
	}
	if old != "" {
		s.rdb.Del(ctx, usernameKey(old))
	}
	return nil
}

func (s *RedisStore) TouchLastLogin(ctx context.Context, identityID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.FetchProfile(ctx, identityID)
	if err != nil {
		return err
	}
	p.LastLogin = time.Now().UTC()
	return s.saveProfile(ctx, p)
}
