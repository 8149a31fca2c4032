// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("secret2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, err := HashPassword("secret1")
	require.NoError(t, err)
	b, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	_, err := VerifyPassword("secret1", "not-a-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("secret1", "$bcrypt$v=19$m=1,t=1,p=1$aa$bb")
	assert.Error(t, err)
}

func TestVerifyPasswordTimingSafeWithoutHash(t *testing.T) {
	ok, err := VerifyPasswordTimingSafe("dummy_password_for_timing_attack_prevention", nil)
	require.NoError(t, err)
	assert.False(t, ok, "a missing hash must never verify")

	empty := ""
	ok, err = VerifyPasswordTimingSafe("anything", &empty)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordTimingSafeWithHash(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	ok, err := VerifyPasswordTimingSafe("secret1", &hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateSessionToken(t *testing.T) {
	a, err := GenerateSessionToken()
	require.NoError(t, err)
	b, err := GenerateSessionToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
	assert.NotContains(t, a, "=")
}

func TestHashToken(t *testing.T) {
	h := HashToken("token")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("token"))
	assert.NotEqual(t, h, HashToken("token2"))
}

func TestVerifyPayloadSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"state":"COMPLETE","metadata":{"entry_id":"1"}}`)
	sig := SignPayload(secret, payload)

	tests := []struct {
		name      string
		secret    string
		payload   []byte
		signature string
		want      bool
	}{
		{"valid", secret, payload, sig, true},
		{"uppercase hex", secret, payload, strings.ToUpper(sig), true},
		{"surrounding whitespace", secret, payload, " " + sig + "\n", true},
		{"tampered payload", secret, append([]byte{' '}, payload...), sig, false},
		{"wrong secret", "other", payload, sig, false},
		{"empty signature", secret, payload, "", false},
		{"empty secret", "", payload, SignPayload("", payload), false},
		{"not hex", secret, payload, "zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifyPayloadSignature(tt.secret, tt.payload, tt.signature)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyPasswordMalformedHashes(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	fields := strings.Split(hash, "$")

	tests := map[string]string{
		"wrong version": strings.Replace(hash, "v=19", "v=16", 1),
		"bad params":    strings.Replace(hash, fields[3], "m=x", 1),
		"bad salt":      strings.Replace(hash, fields[4], "!!", 1),
		"empty key":     strings.TrimSuffix(hash, fields[5]),
		"zero time":     strings.Replace(hash, "t=1,", "t=0,", 1),
		"zero threads":  strings.Replace(hash, ",p=4$", ",p=0$", 1),
		"zero memory":   strings.Replace(hash, "m=65536,", "m=0,", 1),
	}
	for name, encoded := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := VerifyPassword("secret1", encoded)
			assert.ErrorIs(t, err, ErrMalformedHash)
		})
	}
}
