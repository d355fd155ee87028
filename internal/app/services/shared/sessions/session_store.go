// Package sessions stores authenticated portal browser state in Redis, one
// slot per portal. Session blobs carry live portal cookies, so they are
// sealed with a secretbox key before leaving the process.
package sessions

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/nacl/secretbox"
)

type sessionEnvelope struct {
	Portal    string    `json:"portal"`
	Nonce     []byte    `json:"nonce"`
	Sealed    []byte    `json:"sealed"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RedisSessionStore struct {
	client *redis.Client
	key    [32]byte
	log    *zap.Logger
}

func NewRedisSessionStore(client *redis.Client, internalConfig *config.InternalConfig, log *zap.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		key:    sha256.Sum256([]byte(internalConfig.Session.EncryptionKey)),
		log:    log,
	}
}

var _ contracts.SessionStore = (*RedisSessionStore)(nil)

// Get returns the current session for portal, or nil when none is stored or
// the stored one has expired. An expired slot is deleted on read.
func (s *RedisSessionStore) Get(ctx context.Context, portal string) (*models.Session, error) {
	key := s.slotKey(portal)
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, exceptions.ErrRedisGet(err, key)
	}

	var envelope sessionEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, exceptions.ErrSessionDecrypt(err)
	}

	session := &models.Session{
		Portal:    envelope.Portal,
		CreatedAt: envelope.CreatedAt,
		ExpiresAt: envelope.ExpiresAt,
		Valid:     true,
	}
	if session.Expired(time.Now()) {
		s.log.Info("stored portal session expired, dropping it",
			zap.String(constvars.LoggingPortalKey, portal),
		)
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return nil, exceptions.ErrRedisDelete(err)
		}
		return nil, nil
	}

	state, err := s.open(&envelope)
	if err != nil {
		return nil, err
	}
	session.State = state
	return session, nil
}

// Save seals state and writes it into the portal's slot, replacing whatever
// was there. The delete and set run in one transaction so a crash between
// them cannot leave a stale session current.
func (s *RedisSessionStore) Save(ctx context.Context, portal string, state []byte, ttl time.Duration) (*models.Session, error) {
	now := time.Now()
	envelope := sessionEnvelope{
		Portal:    portal,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.seal(&envelope, state); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	key := s.slotKey(portal)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Set(ctx, key, raw, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, exceptions.ErrRedisSet(err)
	}

	s.log.Info("portal session saved",
		zap.String(constvars.LoggingPortalKey, portal),
		zap.Time("expires_at", envelope.ExpiresAt),
	)
	return &models.Session{
		Portal:    portal,
		State:     state,
		CreatedAt: envelope.CreatedAt,
		ExpiresAt: envelope.ExpiresAt,
		Valid:     true,
	}, nil
}

// Invalidate drops the portal's slot. A missing slot is not an error.
func (s *RedisSessionStore) Invalidate(ctx context.Context, portal string) error {
	if err := s.client.Del(ctx, s.slotKey(portal)).Err(); err != nil {
		return exceptions.ErrRedisDelete(err)
	}
	return nil
}

func (s *RedisSessionStore) slotKey(portal string) string {
	return fmt.Sprintf(constvars.RedisKeyPortalSessionFormat, portal)
}

func (s *RedisSessionStore) seal(envelope *sessionEnvelope, state []byte) error {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return exceptions.ErrSessionEncrypt(err)
	}
	envelope.Nonce = nonce[:]
	envelope.Sealed = secretbox.Seal(nil, state, &nonce, &s.key)
	return nil
}

func (s *RedisSessionStore) open(envelope *sessionEnvelope) ([]byte, error) {
	if len(envelope.Nonce) != 24 {
		return nil, exceptions.ErrSessionDecrypt(fmt.Errorf("malformed nonce length %d", len(envelope.Nonce)))
	}
	var nonce [24]byte
	copy(nonce[:], envelope.Nonce)
	state, ok := secretbox.Open(nil, envelope.Sealed, &nonce, &s.key)
	if !ok {
		return nil, exceptions.ErrSessionDecrypt(fmt.Errorf("secretbox open failed"))
	}
	return state, nil
}
