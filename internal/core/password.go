// AngelaMos | 2026
// password.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var ErrMalformedHash = errors.New("malformed password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

// Hashes record their own parameters, so raising these only affects new
// hashes.
var defaultArgon = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
	saltLen: 16,
}

var b64 = base64.RawStdEncoding

// HashPassword returns a PHC-formatted argon2id hash with a random salt.
func HashPassword(password string) (string, error) {
	p := defaultArgon
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := p.derive(password, salt)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, key, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, p.derive(password, salt)) == 1, nil
}

var dummyHash = sync.OnceValue(func() string {
	h, err := HashPassword("moodflow-timing-equaliser")
	if err != nil {
		panic(fmt.Sprintf("core: derive dummy hash: %v", err))
	}
	return h
})

// VerifyPasswordTimingSafe always pays for one argon2 derivation. With no
// stored hash it burns the time on a dummy and reports false.
func VerifyPasswordTimingSafe(password string, encoded *string) (bool, error) {
	if encoded == nil || *encoded == "" {
		_, _ = VerifyPassword(password, dummyHash()) //nolint:errcheck // timing only
		return false, nil
	}
	return VerifyPassword(password, *encoded)
}

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(password),
		salt,
		p.time,
		p.memory,
		p.threads,
		p.keyLen,
	)
}

// parseHash splits "$argon2id$v=19$m=..,t=..,p=..$salt$key".
func parseHash(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return p, nil, nil, ErrMalformedHash
	}
	if fields[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf(
			"%w: algorithm %q",
			ErrMalformedHash,
			fields[1],
		)
	}

	var version int
	_, err := fmt.Sscanf(fields[2], "v=%d", &version)
	if err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf(
			"%w: version %q",
			ErrMalformedHash,
			fields[2],
		)
	}

	_, err = fmt.Sscanf(
		fields[3],
		"m=%d,t=%d,p=%d",
		&p.memory,
		&p.time,
		&p.threads,
	)
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %v", ErrMalformedHash, err)
	}
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return p, nil, nil, fmt.Errorf(
			"%w: zero cost in %q",
			ErrMalformedHash,
			fields[3],
		)
	}

	salt, err := b64.DecodeString(fields[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	key, err := b64.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}

	p.saltLen = len(salt)
	p.keyLen = uint32(len(key)) //nolint:gosec // G115: decoded key is tiny
	return p, salt, key, nil
}
