package dto

import "time"

// ========== Connect / Callback ==========

// ConnectResponse carries the provider consent URL
type ConnectResponse struct {
	AuthURL string `json:"authUrl"`
}

// ========== Sync ==========

type SyncRequest struct {
	UserID string `json:"userId"`
	Async  bool   `json:"async"`
}

type SyncResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type SyncQueuedResponse struct {
	Success bool `json:"success"`
	Queued  bool `json:"queued"`
}

// ========== Disconnect ==========

type DisconnectRequest struct {
	UserID string `json:"userId"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// ========== Read views ==========

// ConnectionStatusResponse describes a connection without any token material
type ConnectionStatusResponse struct {
	Connected bool       `json:"connected"`
	Provider  string     `json:"provider"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type EventResponse struct {
	ID          string `json:"id"`
	EventID     string `json:"eventId"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"allDay"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
