package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/assistflowpro-cyber/assistflow-backend/core/database"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/entity"
)

type ConnectionRepository interface {
	Upsert(ctx context.Context, conn *entity.CalendarConnection) error
	Get(ctx context.Context, userID, provider string) (*entity.CalendarConnection, error)
	Delete(ctx context.Context, userID, provider string) error
	List(ctx context.Context, provider string) ([]entity.CalendarConnection, error)
}

type connectionRepository struct {
	db database.IDatabase
}

func NewConnectionRepository(db database.IDatabase) ConnectionRepository {
	return &connectionRepository{db: db}
}

const connectionColumns = `id, user_id, provider, access_token, refresh_token, expires_at, created_at, updated_at`

// Upsert inserts the connection or replaces the existing row for
// (user_id, provider). A nil refresh token clears the stored one.
func (r *connectionRepository) Upsert(ctx context.Context, conn *entity.CalendarConnection) error {
	conn.EnsureID()
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = conn.UpdatedAt
	}

	query := `
		INSERT INTO calendar_connections (` + connectionColumns + `)
		VALUES (:id, :user_id, :provider, :access_token, :refresh_token, :expires_at, :created_at, :updated_at)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token  = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at    = excluded.expires_at,
			updated_at    = excluded.updated_at
	`
	if _, err := r.db.NamedExecContext(ctx, query, conn); err != nil {
		logger.Error("ConnectionRepository:Upsert:Error", "user_id", conn.UserID, "provider", conn.Provider, "error", err)
		return err
	}
	return nil
}

func (r *connectionRepository) Get(ctx context.Context, userID, provider string) (*entity.CalendarConnection, error) {
	query := r.db.Rebind(`
		SELECT ` + connectionColumns + `
		FROM calendar_connections
		WHERE user_id = ? AND provider = ?
	`)

	var conn entity.CalendarConnection
	if err := r.db.GetContext(ctx, &conn, query, userID, provider); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewAppError(errors.ErrNotFound, "calendar connection not found", err)
		}
		logger.Error("ConnectionRepository:Get:Error", "user_id", userID, "provider", provider, "error", err)
		return nil, err
	}
	return &conn, nil
}

// Delete removes the connection; deleting a missing row is not an error.
func (r *connectionRepository) Delete(ctx context.Context, userID, provider string) error {
	query := r.db.Rebind(`DELETE FROM calendar_connections WHERE user_id = ? AND provider = ?`)
	if err := r.db.ExecContext(ctx, query, userID, provider); err != nil {
		logger.Error("ConnectionRepository:Delete:Error", "user_id", userID, "provider", provider, "error", err)
		return err
	}
	return nil
}

func (r *connectionRepository) List(ctx context.Context, provider string) ([]entity.CalendarConnection, error) {
	query := r.db.Rebind(`
		SELECT ` + connectionColumns + `
		FROM calendar_connections
		WHERE provider = ?
		ORDER BY updated_at ASC
	`)

	connections := []entity.CalendarConnection{}
	if err := r.db.SelectContext(ctx, &connections, query, provider); err != nil {
		logger.Error("ConnectionRepository:List:Error", "provider", provider, "error", err)
		return nil, err
	}
	return connections, nil
}
