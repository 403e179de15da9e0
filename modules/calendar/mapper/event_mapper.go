package mapper

import (
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/dto"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/entity"

	"google.golang.org/api/calendar/v3"
)

// ToExternalEvent normalizes a Google event into a mirror row.
func ToExternalEvent(userID string, item *calendar.Event, createdAt time.Time) entity.ExternalEvent {
	title := item.Summary
	if title == "" {
		title = constants.DefaultEventTitle
	}

	start, allDay := eventTime(item.Start)
	end, _ := eventTime(item.End)

	ev := entity.ExternalEvent{
		UserID:      userID,
		Provider:    constants.ProviderGoogle,
		EventID:     item.Id,
		Title:       title,
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Color:       constants.DefaultEventColor,
		Description: item.Description,
	}
	ev.CreatedAt = createdAt
	return ev
}

func ToExternalEvents(userID string, items []*calendar.Event, createdAt time.Time) []entity.ExternalEvent {
	events := make([]entity.ExternalEvent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, ToExternalEvent(userID, item, createdAt))
	}
	return events
}

// eventTime prefers the timed value and falls back to the all-day date.
func eventTime(t *calendar.EventDateTime) (string, bool) {
	if t == nil {
		return "", false
	}
	if t.DateTime != "" {
		return t.DateTime, false
	}
	return t.Date, t.Date != ""
}

func ToEventResponse(ev *entity.ExternalEvent) dto.EventResponse {
	return dto.EventResponse{
		ID:          ev.ID.String(),
		EventID:     ev.EventID,
		Title:       ev.Title,
		Start:       ev.Start,
		End:         ev.End,
		AllDay:      ev.AllDay,
		Color:       ev.Color,
		Description: ev.Description,
	}
}

func ToEventListResponse(events []entity.ExternalEvent) *dto.EventListResponse {
	items := make([]dto.EventResponse, len(events))
	for i := range events {
		items[i] = ToEventResponse(&events[i])
	}
	return &dto.EventListResponse{Events: items, Count: len(items)}
}

func ToConnectionStatusResponse(conn *entity.CalendarConnection) *dto.ConnectionStatusResponse {
	if conn == nil {
		return &dto.ConnectionStatusResponse{Connected: false, Provider: constants.ProviderGoogle}
	}
	updatedAt := conn.UpdatedAt
	return &dto.ConnectionStatusResponse{
		Connected: true,
		Provider:  conn.Provider,
		ExpiresAt: conn.ExpiresAt,
		UpdatedAt: &updatedAt,
	}
}
