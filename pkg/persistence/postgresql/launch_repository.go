package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/persistence"
)

// LaunchRepository handles launched_executions rows.
type LaunchRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLaunchRepository(db *sql.DB, logger *slog.Logger) *LaunchRepository {
	return &LaunchRepository{db: db, logger: logger}
}

// Save inserts the launch, keeping the first record if the handle repeats.
func (lr *LaunchRepository) Save(ctx context.Context, launch *models.Launch) error {
	query := `
		INSERT INTO launched_executions (execution_arn, request_id, launched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (execution_arn) DO NOTHING
	`

	_, err := lr.db.ExecContext(ctx, query, launch.Handle.String(), launch.RequestID, launch.LaunchedAt.UTC())
	if err != nil {
		return persistence.NewLaunchError("SaveLaunch", launch.Handle.String(), err)
	}

	return nil
}

func (lr *LaunchRepository) GetByHandle(ctx context.Context, handle models.ExecutionHandle) (*models.Launch, error) {
	query := `
		SELECT execution_arn, request_id, launched_at
		FROM launched_executions
		WHERE execution_arn = $1
	`

	var (
		launch models.Launch
		arn    string
	)

	err := lr.db.QueryRowContext(ctx, query, handle.String()).Scan(&arn, &launch.RequestID, &launch.LaunchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewLaunchError("LaunchByHandle", handle.String(), persistence.ErrLaunchNotFound)
		}

		return nil, persistence.NewLaunchError("LaunchByHandle", handle.String(), err)
	}

	launch.Handle = models.ExecutionHandle(arn)

	return &launch, nil
}

func (lr *LaunchRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := lr.db.ExecContext(ctx, "DELETE FROM launched_executions WHERE launched_at < $1", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune launched executions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned launched executions: %w", err)
	}

	return deleted, nil
}
