package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/ports"
)

// envelopeKey is the answer slot holding the sealed state.
const envelopeKey = "__encrypted__"

var (
	// ErrNoEnvelope is returned when a stored state was not sealed by this middleware.
	ErrNoEnvelope = errors.New("state is missing encrypted data envelope")
	// ErrUndecryptable is returned when no configured key opens an envelope.
	ErrUndecryptable = errors.New("no configured key opens the state envelope")
)

// EncryptionConfig lists the AES-256 keys, 32 bytes each. ActiveKey seals
// every write; FallbackKeys are only tried when opening, which lets keys be
// rotated without rewriting stored sessions first.
type EncryptionConfig struct {
	ActiveKey    []byte
	FallbackKeys [][]byte
}

// ParseKey decodes a base64 AES-256 key as found in configuration.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("state key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("state key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// NewEncryption returns a middleware that seals whole session states with
// AES-GCM. The stored envelope keeps ids, status and timestamps in clear so
// listings and routing still work. Each ciphertext is bound to its session
// id, so an envelope copied under another id does not open.
func NewEncryption(cfg EncryptionConfig) (Middleware, error) {
	active, err := newAEAD(cfg.ActiveKey)
	if err != nil {
		return nil, fmt.Errorf("active key: %w", err)
	}
	openers := []cipher.AEAD{active}
	for i, k := range cfg.FallbackKeys {
		aead, err := newAEAD(k)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		openers = append(openers, aead)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &sealedStore{next: next, sealer: active, openers: openers}
	}, nil
}

// NewEncryptionMiddleware is NewEncryption for keys known to be valid.
// It panics on a malformed key.
func NewEncryptionMiddleware(cfg EncryptionConfig) Middleware {
	mw, err := NewEncryption(cfg)
	if err != nil {
		panic(err)
	}
	return mw
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes (AES-256), got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

type sealedStore struct {
	next    ports.StateStore
	sealer  cipher.AEAD
	openers []cipher.AEAD
}

func (s *sealedStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	nonce := make([]byte, s.sealer.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to read nonce: %w", err)
	}
	sealed := s.sealer.Seal(nonce, nonce, plain, []byte(sessionID))

	// Answers, parties and lists carry personal data; none of it leaves in clear.
	return s.next.Save(ctx, sessionID, &domain.State{
		SessionID: state.SessionID,
		WizardID:  state.WizardID,
		Status:    state.Status,
		Complete:  state.Complete,
		Answers:   map[string]string{envelopeKey: base64.StdEncoding.EncodeToString(sealed)},
		CreatedAt: state.CreatedAt,
		UpdatedAt: state.UpdatedAt,
	})
}

func (s *sealedStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	envelope, err := s.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	encoded, ok := envelope.Answers[envelopeKey]
	if !ok {
		// A plain state under an encrypting store is not trusted.
		return nil, ErrNoEnvelope
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	plain, err := s.open(sealed, []byte(sessionID))
	if err != nil {
		return nil, err
	}

	var state domain.State
	if err := json.Unmarshal(plain, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted state: %w", err)
	}
	return &state, nil
}

func (s *sealedStore) open(sealed, aad []byte) ([]byte, error) {
	for _, aead := range s.openers {
		n := aead.NonceSize()
		if len(sealed) < n {
			return nil, fmt.Errorf("%w: ciphertext too short", ErrUndecryptable)
		}
		if plain, err := aead.Open(nil, sealed[:n], sealed[n:], aad); err == nil {
			return plain, nil
		}
	}
	return nil, ErrUndecryptable
}

func (s *sealedStore) Delete(ctx context.Context, sessionID string) error {
	return s.next.Delete(ctx, sessionID)
}

func (s *sealedStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}
