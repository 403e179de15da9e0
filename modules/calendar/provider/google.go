package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/config"
	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Provider is the calendar account the service talks to.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	ListUpcomingEvents(ctx context.Context, accessToken string, timeMin time.Time, maxResults int64) ([]*calendar.Event, error)
}

type Google struct {
	oauth           *oauth2.Config
	calendarBaseURL string
	httpClient      *http.Client
}

type GoogleOption func(*Google)

// WithHTTPClient sets the client used for token and Calendar API calls.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *Google) { g.httpClient = c }
}

func NewGoogle(cfg config.GoogleAPIConfig, opts ...GoogleOption) *Google {
	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	g := &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{constants.GoogleCalendarScope},
			Endpoint:     endpoint,
		},
		calendarBaseURL: cfg.CalendarBaseURL,
		httpClient:      &http.Client{Timeout: constants.DefaultTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AuthCodeURL returns the consent URL. state is echoed back on the callback.
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (g *Google) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

func (g *Google) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.oauth.Exchange(g.clientContext(ctx), code)
	if err != nil {
		logger.Error("GoogleProvider:Exchange:Error", "error", err)
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

func (g *Google) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ts := g.oauth.TokenSource(g.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := ts.Token()
	if err != nil {
		logger.Error("GoogleProvider:RefreshToken:Error", "error", err)
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return token, nil
}

// ListUpcomingEvents reads the primary calendar from timeMin onwards with
// recurring events expanded, ordered by start time.
func (g *Google) ListUpcomingEvents(ctx context.Context, accessToken string, timeMin time.Time, maxResults int64) ([]*calendar.Event, error) {
	client := oauth2.NewClient(g.clientContext(ctx), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if g.calendarBaseURL != "" {
		opts = append(opts, option.WithEndpoint(g.calendarBaseURL))
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	res, err := svc.Events.List(constants.GoogleCalendarID).
		Context(ctx).
		TimeMin(timeMin.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		logger.Error("GoogleProvider:ListUpcomingEvents:Error", "error", err)
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return res.Items, nil
}
