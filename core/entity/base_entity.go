package entity

import (
	"time"

	"github.com/google/uuid"
)

type BaseEntity struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EnsureID assigns a new ID when the entity has none yet.
func (b *BaseEntity) EnsureID() {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
}
