package entity

import (
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/entity"
)

// CalendarConnection stores a user's provider credentials. Token fields hold
// ciphertext produced by core/crypto, never plaintext.
type CalendarConnection struct {
	entity.BaseEntity
	UserID       string     `db:"user_id" json:"user_id"`
	Provider     string     `db:"provider" json:"provider"` // "google"
	AccessToken  string     `db:"access_token" json:"-"`
	RefreshToken *string    `db:"refresh_token" json:"-"`
	ExpiresAt    *time.Time `db:"expires_at" json:"expires_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsExpired reports whether the access token expires within skew of now. A
// connection without a recorded expiry is treated as valid.
func (c *CalendarConnection) IsExpired(now time.Time, skew time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Add(-skew))
}
