package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const sessionTokenBytes = 32

// TokenIssuer mints opaque bearer tokens for sessions.
type TokenIssuer interface {
	Issue() (string, error)
}

// RandomTokenIssuer draws 256 bits from a cryptographic source and encodes
// them as unpadded base64url.
type RandomTokenIssuer struct {
	source io.Reader
}

// NewRandomTokenIssuer returns an issuer backed by crypto/rand.
func NewRandomTokenIssuer() *RandomTokenIssuer {
	return &RandomTokenIssuer{source: rand.Reader}
}

func (i *RandomTokenIssuer) Issue() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := io.ReadFull(i.source, buf); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
