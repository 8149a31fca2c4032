// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// Session is a server-side login. Only the SHA-256 of the opaque token is
// stored, so a database read never yields a usable credential.
type Session struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	UserAgent string     `db:"user_agent"`
	IPAddress string     `db:"ip_address"`
}
