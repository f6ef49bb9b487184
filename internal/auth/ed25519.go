package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/rs/zerolog"
)

// Ed25519AuthProvider signs in the journal owner. A request is the owner's
// when it carries a signature of the current challenge made with the
// owner's private key, in the auth header or the auth cookie.
type Ed25519AuthProvider struct {
	publicKey  ed25519.PublicKey
	headerName string
	cookieName string
	owner      *model.User

	mu        sync.RWMutex
	challenge []byte
}

func ParsePublicKey(publicKeyPEM string) (ed25519.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	publicKey, ok := pub.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("key is not an Ed25519 public key")
	}
	return publicKey, nil
}

func newChallenge() ([]byte, error) {
	challenge := make([]byte, 32)
	if _, err := rand.Read(challenge); err != nil {
		return nil, fmt.Errorf("failed to generate challenge: %w", err)
	}
	return challenge, nil
}

func NewEd25519AuthProvider(publicKeyPEM string, headerName string, owner *model.User) (*Ed25519AuthProvider, error) {
	publicKey, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, errors.New("owner is required")
	}

	challenge, err := newChallenge()
	if err != nil {
		return nil, err
	}

	return &Ed25519AuthProvider{
		publicKey:  publicKey,
		headerName: headerName,
		cookieName: config.CookieAuthToken,
		owner:      owner,
		challenge:  challenge,
	}, nil
}

func (p *Ed25519AuthProvider) verify(signature []byte) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(signature) == ed25519.SignatureSize && ed25519.Verify(p.publicKey, p.challenge, signature)
}

// signature reads the request signature from the header, falling back to the cookie.
func (p *Ed25519AuthProvider) signature(r *http.Request) []byte {
	l := zerolog.Ctx(r.Context())

	if p.headerName != "" {
		if h := strings.TrimSpace(r.Header.Get(p.headerName)); h != "" {
			sig, err := base64.StdEncoding.DecodeString(h)
			if err == nil {
				return sig
			}
			l.Debug().Err(err).Msg("Failed to decode signature from header")
		}
	}

	if cookie, err := r.Cookie(p.cookieName); err == nil && cookie.Value != "" {
		sig, err := base64.StdEncoding.DecodeString(cookie.Value)
		if err == nil {
			return sig
		}
		l.Debug().Err(err).Msg("Failed to decode signature from cookie")
	}
	return nil
}

func (p *Ed25519AuthProvider) WithHeaderAuthorization() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sig := p.signature(r); len(sig) > 0 && p.verify(sig) {
				owner := *p.owner
				r = r.WithContext(ContextWithUser(r.Context(), &owner))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (p *Ed25519AuthProvider) GetUserFromSession(r *http.Request) (*model.User, error) {
	return userFromSession(r)
}

func (p *Ed25519AuthProvider) EnforceUser(w http.ResponseWriter, r *http.Request) (*model.User, error) {
	return enforceUser(w, r)
}

func (p *Ed25519AuthProvider) GetChallenge() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]byte(nil), p.challenge...)
}

// RefreshChallenge replaces the challenge. Signatures of the old one stop working.
func (p *Ed25519AuthProvider) RefreshChallenge() error {
	challenge, err := newChallenge()
	if err != nil {
		authLogger.Error().Err(err).Msg("Failed to generate challenge")
		return err
	}

	p.mu.Lock()
	p.challenge = challenge
	p.mu.Unlock()
	return nil
}
