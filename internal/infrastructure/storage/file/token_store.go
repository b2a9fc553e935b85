// Package file stores the session token in a small JSON document on disk,
// the terminal counterpart of browser local storage.
package file

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/atongani/market-client/internal/core/ports"
)

const (
	// DefaultKey is the document key the token is stored under.
	DefaultKey = "accessToken"

	sealedPrefix = "sealed:"
	nonceSize    = 24
)

var ErrSealed = errors.New("stored token is sealed and no secret is configured")

// Config captures the settings of a TokenStore.
type Config struct {
	Path string
	Key  string
	// Secret, when set, seals the token with NaCl secretbox before it is
	// written. The same secret is required to read it back.
	Secret string
}

// TokenStore implements ports.TokenStorage on top of a single file.
type TokenStore struct {
	path   string
	key    string
	sealed *[32]byte
}

// New returns a TokenStore. An empty Config.Key falls back to DefaultKey.
func New(cfg Config) (*TokenStore, error) {
	if cfg.Path == "" {
		return nil, errors.New("file token store: path is required")
	}
	s := &TokenStore{path: cfg.Path, key: cfg.Key}
	if s.key == "" {
		s.key = DefaultKey
	}
	if cfg.Secret != "" {
		k := blake2b.Sum256([]byte(cfg.Secret))
		s.sealed = &k
	}
	return s, nil
}

// DefaultPath returns the per-user location of the session file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "atongani", "session.json")
}

func (s *TokenStore) Load(_ context.Context) (string, error) {
	doc, err := s.read()
	if err != nil {
		return "", err
	}
	raw, ok := doc[s.key]
	if !ok || raw == "" {
		return "", ports.ErrTokenNotFound
	}
	return s.open(raw)
}

func (s *TokenStore) Save(_ context.Context, token string) error {
	doc, err := s.read()
	if err != nil && !errors.Is(err, ports.ErrTokenNotFound) {
		return err
	}
	if doc == nil {
		doc = map[string]string{}
	}
	value, err := s.seal(token)
	if err != nil {
		return err
	}
	doc[s.key] = value
	return s.write(doc)
}

func (s *TokenStore) Delete(_ context.Context) error {
	doc, err := s.read()
	if err != nil {
		if errors.Is(err, ports.ErrTokenNotFound) {
			return nil
		}
		return err
	}
	delete(doc, s.key)
	if len(doc) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	}
	return s.write(doc)
}

func (s *TokenStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ports.ErrTokenNotFound
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	doc := map[string]string{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return doc, nil
}

// write replaces the file atomically so a crash never leaves a torn document.
func (s *TokenStore) write(doc map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *TokenStore) seal(token string) (string, error) {
	if s.sealed == nil {
		return token, nil
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("seal token: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, s.sealed)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(box), nil
}

func (s *TokenStore) open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if s.sealed == nil {
		return "", ErrSealed
	}
	box, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil || len(box) < nonceSize {
		return "", errors.New("open token: malformed sealed value")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, s.sealed)
	if !ok {
		return "", errors.New("open token: wrong secret")
	}
	return string(plain), nil
}
