package orchestrators

import (
	"context"
	"log/slog"

	"attendance/internal/adapters/storage"
)

// InitSchemaDeps holds dependencies for InitSchema.
type InitSchemaDeps struct {
	DB storage.SQLDB
}

// ExecuteInitSchema creates the tables and index when missing.
// PRE: DB is reachable
// POST: Schema exists; existing rows are untouched
func ExecuteInitSchema(ctx context.Context, deps InitSchemaDeps) error {
	if err := storage.InitDB(ctx, deps.DB); err != nil {
		return err
	}
	slog.Info("schema_event", "event", "schema_initialized")
	return nil
}
