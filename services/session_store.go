package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/models"
)

// SessionCache holds short-lived session state: cached user documents,
// revoked token ids and the profile-gate suppression flag.
type SessionCache interface {
	CachedUser(ctx context.Context, uid string) (*models.User, bool)
	CacheUser(ctx context.Context, user *models.User)
	EvictUser(ctx context.Context, uid string)
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) bool
	SuppressProfileGate(ctx context.Context, uid string, ttl time.Duration)
	ReleaseProfileGate(ctx context.Context, uid string)
	ProfileGateSuppressed(ctx context.Context, uid string) bool
}

// SessionStore is the Redis SessionCache. A nil client turns every call into
// a miss or a no-op, so the service keeps working without Redis.
type SessionStore struct {
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewSessionStore(rdb *redis.Client, cacheTTL time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, cacheTTL: cacheTTL}
}

func userKey(uid string) string        { return "session:user:" + uid }
func revokedKey(tokenID string) string { return "session:revoked:" + tokenID }
func suppressKey(uid string) string    { return "session:suppress-profile:" + uid }

func (s *SessionStore) CachedUser(ctx context.Context, uid string) (*models.User, bool) {
	if s.rdb == nil {
		return nil, false
	}
	data, err := s.rdb.Get(ctx, userKey(uid)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Get("app").WithError(err).WithField("uid", uid).Warn("session cache read failed")
		}
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, false
	}
	return &u, true
}

func (s *SessionStore) CacheUser(ctx context.Context, user *models.User) {
	if s.rdb == nil || user == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, userKey(user.ID), data, s.cacheTTL).Err(); err != nil {
		logger.Get("app").WithError(err).WithField("uid", user.ID).Warn("session cache write failed")
	}
}

func (s *SessionStore) EvictUser(ctx context.Context, uid string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, userKey(uid))
}

// Revoke blocks tokenID until its expiry.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if s.rdb == nil {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) bool {
	if s.rdb == nil {
		return false
	}
	n, err := s.rdb.Exists(ctx, revokedKey(tokenID)).Result()
	return err == nil && n > 0
}

// SuppressProfileGate lifts the profile gate for uid while they create a user.
// The ttl bounds it in case the release never happens.
func (s *SessionStore) SuppressProfileGate(ctx context.Context, uid string, ttl time.Duration) {
	if s.rdb == nil {
		return
	}
	s.rdb.Set(ctx, suppressKey(uid), 1, ttl)
}

func (s *SessionStore) ReleaseProfileGate(ctx context.Context, uid string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, suppressKey(uid))
}

func (s *SessionStore) ProfileGateSuppressed(ctx context.Context, uid string) bool {
	if s.rdb == nil {
		return false
	}
	n, err := s.rdb.Exists(ctx, suppressKey(uid)).Result()
	return err == nil && n > 0
}
