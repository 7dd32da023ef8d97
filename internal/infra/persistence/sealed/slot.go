// Package sealed wraps a state slot so payloads are compressed and encrypted at
// rest with a passphrase-derived key.
package sealed

import (
	"bytes"
	"compress/zlib"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/scrypt"

	"nutritrack/pkg/domain"
)

var _ domain.StateSlot = (*Slot)(nil)

const (
	envelopeVersion = 1
	kdfScrypt       = "scrypt"
	keyLen          = 32
	saltLen         = 16
)

// ErrUnseal is returned when a sealed payload cannot be opened, usually because
// the passphrase is wrong.
var ErrUnseal = errors.New("sealed: cannot open payload")

// Params are the scrypt cost parameters.
type Params struct {
	N int
	R int
	P int
}

// within reports whether every parameter is positive and no larger than limit.
func (p Params) within(limit Params) bool {
	return p.N > 1 && p.R > 0 && p.P > 0 && p.N <= limit.N && p.R <= limit.R && p.P <= limit.P
}

// DefaultParams are used by New when no override is given.
var DefaultParams = Params{N: 1 << 15, R: 8, P: 1}

type envelope struct {
	Version int    `json:"v"`
	KDF     string `json:"kdf"`
	N       int    `json:"n"`
	R       int    `json:"r"`
	P       int    `json:"p"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Data    []byte `json:"data"`
}

// Slot seals payloads before handing them to the inner slot. Payloads read back
// that are not sealed envelopes pass through unchanged, so an existing plain
// snapshot can be adopted and is sealed on the next write.
type Slot struct {
	inner      domain.StateSlot
	passphrase []byte
	params     Params

	mu   sync.Mutex
	salt []byte
	keys map[string][]byte
}

// New wraps inner. An empty passphrase is rejected.
func New(inner domain.StateSlot, passphrase string, params Params) (*Slot, error) {
	if passphrase == "" {
		return nil, errors.New("sealed: passphrase required")
	}
	if params == (Params{}) {
		params = DefaultParams
	}
	return &Slot{inner: inner, passphrase: []byte(passphrase), params: params, keys: make(map[string][]byte)}, nil
}

// Inner returns the wrapped slot.
func (s *Slot) Inner() domain.StateSlot { return s.inner }

// Read opens the payload stored under key.
func (s *Slot) Read(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.inner.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.KDF == "" {
		return raw, nil
	}
	if env.Version != envelopeVersion || env.KDF != kdfScrypt {
		return nil, fmt.Errorf("sealed: unsupported envelope v%d/%s", env.Version, env.KDF)
	}
	params := Params{N: env.N, R: env.R, P: env.P}
	if !params.within(s.ceiling()) {
		return nil, fmt.Errorf("sealed: envelope cost n=%d r=%d p=%d out of range", env.N, env.R, env.P)
	}
	aead, err := s.aead(env.Salt, params)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, ErrUnseal
	}
	compressed, err := aead.Open(nil, env.Nonce, env.Data, []byte(key))
	if err != nil {
		return nil, ErrUnseal
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("sealed: inflate: %w", err)
	}
	defer func() { _ = zr.Close() }()
	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("sealed: inflate: %w", err)
	}
	return plain, nil
}

// Write seals payload and stores the envelope under key.
func (s *Slot) Write(ctx context.Context, key string, payload []byte) error {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(payload); err != nil {
		return fmt.Errorf("sealed: deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("sealed: deflate: %w", err)
	}
	salt, err := s.writeSalt()
	if err != nil {
		return err
	}
	aead, err := s.aead(salt, s.params)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("sealed: nonce: %w", err)
	}
	env := envelope{
		Version: envelopeVersion,
		KDF:     kdfScrypt,
		N:       s.params.N,
		R:       s.params.R,
		P:       s.params.P,
		Salt:    salt,
		Nonce:   nonce,
		Data:    aead.Seal(nil, nonce, compressed.Bytes(), []byte(key)),
	}
	sealed, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("sealed: encode envelope: %w", err)
	}
	return s.inner.Write(ctx, key, sealed)
}

// ceiling bounds the cost parameters accepted from stored envelopes.
func (s *Slot) ceiling() Params {
	return Params{
		N: max(s.params.N, DefaultParams.N),
		R: max(s.params.R, DefaultParams.R),
		P: max(s.params.P, DefaultParams.P),
	}
}

func (s *Slot) writeSalt() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.salt == nil {
		salt := make([]byte, saltLen)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("sealed: salt: %w", err)
		}
		s.salt = salt
	}
	return s.salt, nil
}

// aead derives (or reuses) the key for salt and params.
func (s *Slot) aead(salt []byte, p Params) (cipher.AEAD, error) {
	cacheKey := fmt.Sprintf("%x/%d/%d/%d", salt, p.N, p.R, p.P)
	s.mu.Lock()
	key, ok := s.keys[cacheKey]
	s.mu.Unlock()
	if !ok {
		derived, err := scrypt.Key(s.passphrase, salt, p.N, p.R, p.P, keyLen)
		if err != nil {
			return nil, fmt.Errorf("sealed: derive key: %w", err)
		}
		s.mu.Lock()
		s.keys[cacheKey] = derived
		s.mu.Unlock()
		key = derived
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sealed: cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
