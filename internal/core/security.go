// AngelaMos | 2026
// security.go

package core

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const sessionTokenBytes = 32

// GenerateSessionToken returns 32 random bytes as unpadded base64url.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken is the at-rest form of a session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SignPayload returns the lowercase hex HMAC-SHA256 of payload.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPayloadSignature reports whether signature is the hex HMAC-SHA256 of
// the exact payload bytes. An empty secret or signature never verifies.
func VerifyPayloadSignature(secret string, payload []byte, signature string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(SignPayload(secret, payload)), []byte(signature))
}
