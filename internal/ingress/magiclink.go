package ingress

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/r3e-network/metasearch/internal/platform/apierrors"
)

type magicLinkRecord struct {
	createdAt time.Time
	expiresAt time.Time
	purpose   string
	used      bool
}

// MagicLinkStore mints and verifies single-use magic-link tokens. Mint
// hashes the fresh random value with the configured secret so the stored
// key is not the bearer-usable token itself.
type MagicLinkStore struct {
	secret string
	ttl    time.Duration

	mu      sync.Mutex
	records map[string]*magicLinkRecord
}

func NewMagicLinkStore(secret string, ttl time.Duration) *MagicLinkStore {
	return &MagicLinkStore{
		secret:  secret,
		ttl:     ttl,
		records: make(map[string]*magicLinkRecord),
	}
}

// Mint returns a fresh token and registers it for single use.
func (s *MagicLinkStore) Mint(purpose string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", apierrors.Internal(err)
	}
	token := hex.EncodeToString(buf)
	key := s.hash(token)

	now := time.Now()
	s.mu.Lock()
	s.records[key] = &magicLinkRecord{
		createdAt: now,
		expiresAt: now.Add(s.ttl),
		purpose:   purpose,
	}
	s.mu.Unlock()
	return token, nil
}

// Verify consumes token if it exists, is unexpired and unused, returning the
// purpose string that was minted with it.
func (s *MagicLinkStore) Verify(token string) (string, error) {
	key := s.hash(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok || rec.used || time.Now().After(rec.expiresAt) {
		return "", apierrors.MagicLinkInvalid()
	}
	rec.used = true
	return rec.purpose, nil
}

func (s *MagicLinkStore) hash(token string) string {
	sum := sha256.Sum256([]byte(token + s.secret))
	return hex.EncodeToString(sum[:])
}

// Purge deletes records past expiration+60s, run by the scheduler every
// minute.
func (s *MagicLinkStore) Purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, rec := range s.records {
		if now.After(rec.expiresAt.Add(60 * time.Second)) {
			delete(s.records, k)
			removed++
		}
	}
	return removed
}

// MagicLink wraps next with the magic-link stage: when a magic_token query
// parameter is present, an invalid/expired token rejects 401, otherwise the
// request is marked pre-authenticated and passes straight through Auth.
func MagicLink(store *MagicLinkStore, next http.Handler) http.Handler {
	if store == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("magic_token")
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		purpose, err := store.Verify(token)
		if err != nil {
			writeErr(w, err)
			return
		}
		next.ServeHTTP(w, withPreAuthenticated(r, purpose))
	})
}
