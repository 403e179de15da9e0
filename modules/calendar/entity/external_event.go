package entity

import (
	"github.com/assistflowpro-cyber/assistflow-backend/core/entity"
)

// ExternalEvent is one event mirrored from the provider. Rows for a
// (user, provider) pair are always the full result of the last sync.
type ExternalEvent struct {
	entity.BaseEntity
	UserID      string `db:"user_id" json:"user_id"`
	Provider    string `db:"provider" json:"provider"`
	EventID     string `db:"event_id" json:"event_id"`
	Title       string `db:"title" json:"title"`
	Start       string `db:"start_time" json:"start"` // RFC3339 date-time or YYYY-MM-DD
	End         string `db:"end_time" json:"end"`
	AllDay      bool   `db:"all_day" json:"all_day"`
	Color       string `db:"color" json:"color"`
	Description string `db:"description" json:"description"`
}
