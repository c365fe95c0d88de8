package mcp

import (
	"context"

	"github.com/Ranveer112/valens/internal/models"
	"github.com/Ranveer112/valens/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	ListRoutines(ctx context.Context) ([]models.Routine, error)
	ListTrainingSessions(ctx context.Context) ([]models.TrainingSession, error)
	GetTrainingSession(ctx context.Context, id uint32) (*models.TrainingSession, error)
	OngoingSession(ctx context.Context) (*models.OngoingSession, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
