// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// User is a credential record. Users are never hard-deleted; deactivation
// is the only mutation after creation.
type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}
