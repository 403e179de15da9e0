package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGoogle(t *testing.T, handler http.Handler) (*Google, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewGoogle(config.GoogleAPIConfig{
		ClientID:        "client-id",
		ClientSecret:    "client-secret",
		RedirectURI:     "https://api.example.com/api/calendars/callback",
		TokenURL:        srv.URL + "/token",
		CalendarBaseURL: srv.URL + "/calendar/v3/",
	}, WithHTTPClient(srv.Client()))
	return g, srv
}

func TestGoogle_AuthCodeURL(t *testing.T) {
	g := NewGoogle(config.GoogleAPIConfig{
		ClientID:    "client-id",
		RedirectURI: "https://api.example.com/api/calendars/callback",
	})

	raw := g.AuthCodeURL("user-42")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "user-42", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "https://www.googleapis.com/auth/calendar.readonly", q.Get("scope"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "https://api.example.com/api/calendars/callback", q.Get("redirect_uri"))
}

func TestGoogle_Exchange(t *testing.T) {
	g, _ := newTestGoogle(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))

	tok, err := g.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	assert.Equal(t, "refresh-1", tok.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Expiry, time.Minute)
}

func TestGoogle_ExchangeRejected(t *testing.T) {
	g, _ := newTestGoogle(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))

	_, err := g.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestGoogle_RefreshToken(t *testing.T) {
	g, _ := newTestGoogle(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-2",
			"token_type":   "Bearer",
			"expires_in":   1800,
		})
	}))

	tok, err := g.RefreshToken(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", tok.AccessToken)
}

func TestGoogle_ListUpcomingEvents(t *testing.T) {
	timeMin := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	g, _ := newTestGoogle(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/v3/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "2024-06-01T09:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "50", q.Get("maxResults"))
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Empty(t, q.Get("timeMax"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": "e1", "summary": "Standup", "start": {"dateTime": "2024-06-01T10:00:00Z"}, "end": {"dateTime": "2024-06-01T10:15:00Z"}},
				{"id": "e2", "start": {"date": "2024-06-02"}, "end": {"date": "2024-06-03"}}
			]
		}`))
	}))

	events, err := g.ListUpcomingEvents(context.Background(), "access-1", timeMin, 50)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Standup", events[0].Summary)
	assert.Equal(t, "2024-06-01T10:00:00Z", events[0].Start.DateTime)
	assert.Equal(t, "2024-06-02", events[1].Start.Date)
}

func TestGoogle_ListUpcomingEventsUnauthorized(t *testing.T) {
	g, _ := newTestGoogle(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":401,"message":"Invalid Credentials"}}`))
	}))

	_, err := g.ListUpcomingEvents(context.Background(), "expired", time.Now(), 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid Credentials")
}
