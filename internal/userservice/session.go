package userservice

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/traveltales/journal/internal/common"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStore keeps logged-in sessions in memory, keyed by the hash of
// their token. Sessions expire after the store's TTL.
type SessionStore struct {
	mu  sync.Mutex
	c   *common.Cache
	ttl time.Duration
}

func NewSessionStore(c *common.Cache, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = SessionTime
	}
	return &SessionStore{c: c, ttl: ttl}
}

func hashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

func newSession(u User, ttl time.Duration) (*Session, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Token:  base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes),
		User:   u,
		Expiry: time.Now().Add(ttl),
	}

	session.Hash = hashToken(session.Token)

	return session, nil
}

func (s *SessionStore) Create(u User) (*Session, error) {
	session, err := newSession(u, s.ttl)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := common.CacheKeySession(session.Hash)
	s.c.Set(key, *session, s.ttl)
	s.c.Set(common.CacheKeySessionsByUser(u.ID), append(s.keysFor(u.ID), key), s.ttl)

	return session, nil
}

func (s *SessionStore) Get(token string) (*Session, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	item, ok := s.c.Get(common.CacheKeySession(hashToken(token)))
	if !ok {
		return nil, ErrSessionNotFound
	}

	session := item.(Session)
	session.Token = token
	return &session, nil
}

// Refresh replaces the user held by every live session of u.ID, keeping
// each session's expiry.
func (s *SessionStore) Refresh(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var live []string
	for _, key := range s.keysFor(u.ID) {
		item, expiry, ok := s.c.GetWithExpiration(key)
		if !ok {
			continue
		}
		session := item.(Session)
		session.User = u
		s.c.Set(key, session, time.Until(expiry))
		live = append(live, key)
	}

	s.c.Set(common.CacheKeySessionsByUser(u.ID), live, s.ttl)
}

func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := common.CacheKeySession(hashToken(token))
	item, ok := s.c.Get(key)
	if !ok {
		return
	}
	s.c.Delete(key)

	id := item.(Session).User.ID
	keys := slices.DeleteFunc(s.keysFor(id), func(k string) bool { return k == key })
	s.c.Set(common.CacheKeySessionsByUser(id), keys, s.ttl)
}

// DeleteUser ends every session of the user.
func (s *SessionStore) DeleteUser(id common.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.keysFor(id) {
		s.c.Delete(key)
	}
	s.c.Delete(common.CacheKeySessionsByUser(id))
}

func (s *SessionStore) keysFor(id common.ID) []string {
	item, ok := s.c.Get(common.CacheKeySessionsByUser(id))
	if !ok {
		return nil
	}
	return slices.Clone(item.([]string))
}
