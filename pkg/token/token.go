// Package token issues and verifies the RS256 bearer tokens used by the API.
// The subject claim carries the user ID.
package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const keyBits = 2048

var ErrInvalidToken = errors.New("invalid token")

// Manager signs and verifies tokens with a single RSA key pair.
type Manager struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
	ttl     time.Duration
	now     func() time.Time
}

// New parses PEM encoded keys. The public key may be empty, in which case it is
// derived from the private one.
func New(privatePEM, publicPEM string, ttl time.Duration) (*Manager, error) {
	private, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privatePEM))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA private key: %w", err)
	}

	public := &private.PublicKey
	if publicPEM != "" {
		public, err = jwt.ParseRSAPublicKeyFromPEM([]byte(publicPEM))
		if err != nil {
			return nil, fmt.Errorf("could not parse RSA public key: %w", err)
		}
	}

	return &Manager{private: private, public: public, ttl: ttl, now: time.Now}, nil
}

// NewEphemeral generates a throwaway key pair. Tokens do not survive a restart.
func NewEphemeral(ttl time.Duration) (*Manager, error) {
	private, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, fmt.Errorf("could not generate RSA key: %w", err)
	}

	return &Manager{private: private, public: &private.PublicKey, ttl: ttl, now: time.Now}, nil
}

// GeneratePrivateKeyPEM returns a new PKCS#1 PEM encoded RSA key, suitable for
// JWT_PRIVATE_KEY.
func GeneratePrivateKeyPEM() (string, error) {
	private, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return "", fmt.Errorf("could not generate RSA key: %w", err)
	}

	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(private),
	})), nil
}

// Issue returns a signed token for subject, valid for ttl. A zero ttl uses the
// manager default.
func (m *Manager) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = m.ttl
	}

	now := m.now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(m.private)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not sign JWT: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the signature and time claims and returns the subject.
func (m *Manager) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return m.public, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}
