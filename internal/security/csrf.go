package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// CSRFGenerator binds CSRF tokens to a session's token id. Tokens are an
// HMAC-SHA256 of the id so nothing is stored server side.
type CSRFGenerator struct {
	secret []byte
}

func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{secret: []byte(secret)}
}

func (g *CSRFGenerator) sign(tokenID string) []byte {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(tokenID))
	return mac.Sum(nil)
}

// GenerateToken returns the CSRF token for a session token id, or "" when
// the id is empty
func (g *CSRFGenerator) GenerateToken(tokenID string) string {
	if tokenID == "" {
		return ""
	}
	return hex.EncodeToString(g.sign(tokenID))
}

// ValidateToken reports whether token belongs to tokenID
func (g *CSRFGenerator) ValidateToken(tokenID, token string) bool {
	if tokenID == "" || token == "" {
		return false
	}
	got, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	return hmac.Equal(got, g.sign(tokenID))
}
