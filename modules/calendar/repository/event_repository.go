package repository

import (
	"context"

	"github.com/assistflowpro-cyber/assistflow-backend/core/database"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/entity"

	"github.com/jmoiron/sqlx"
)

type EventRepository interface {
	ReplaceAll(ctx context.Context, userID, provider string, events []entity.ExternalEvent) error
	DeleteAll(ctx context.Context, userID, provider string) error
	List(ctx context.Context, userID, provider string) ([]entity.ExternalEvent, error)
}

type eventRepository struct {
	db database.IDatabase
}

func NewEventRepository(db database.IDatabase) EventRepository {
	return &eventRepository{db: db}
}

const insertEventQuery = `
	INSERT INTO external_events
		(id, user_id, provider, event_id, title, start_time, end_time, all_day, color, description, created_at)
	VALUES
		(:id, :user_id, :provider, :event_id, :title, :start_time, :end_time, :all_day, :color, :description, :created_at)
`

// ReplaceAll swaps the stored snapshot for (userID, provider) with events in a
// single transaction. Events are written with the given user and provider
// regardless of what they carry.
func (r *eventRepository) ReplaceAll(ctx context.Context, userID, provider string, events []entity.ExternalEvent) error {
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		del := tx.Rebind(`DELETE FROM external_events WHERE user_id = ? AND provider = ?`)
		if _, err := tx.ExecContext(ctx, del, userID, provider); err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		stmt, err := tx.PrepareNamedContext(ctx, insertEventQuery)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range events {
			ev := &events[i]
			ev.EnsureID()
			ev.UserID = userID
			ev.Provider = provider
			if _, err := stmt.ExecContext(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("EventRepository:ReplaceAll:Error", "user_id", userID, "provider", provider, "count", len(events), "error", err)
		return err
	}
	return nil
}

func (r *eventRepository) DeleteAll(ctx context.Context, userID, provider string) error {
	query := r.db.Rebind(`DELETE FROM external_events WHERE user_id = ? AND provider = ?`)
	if err := r.db.ExecContext(ctx, query, userID, provider); err != nil {
		logger.Error("EventRepository:DeleteAll:Error", "user_id", userID, "provider", provider, "error", err)
		return err
	}
	return nil
}

func (r *eventRepository) List(ctx context.Context, userID, provider string) ([]entity.ExternalEvent, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, provider, event_id, title, start_time, end_time, all_day, color, description, created_at
		FROM external_events
		WHERE user_id = ? AND provider = ?
		ORDER BY start_time ASC
	`)

	events := []entity.ExternalEvent{}
	if err := r.db.SelectContext(ctx, &events, query, userID, provider); err != nil {
		logger.Error("EventRepository:List:Error", "user_id", userID, "provider", provider, "error", err)
		return nil, err
	}
	return events, nil
}
