// Package ingest imports training data exported from another Valens
// instance. Exercises and routines are matched by name so repeated imports
// do not duplicate them; sessions are always created with their IDs and
// references remapped.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/Ranveer112/valens/internal/forms"
	"github.com/Ranveer112/valens/internal/models"
	"github.com/Ranveer112/valens/internal/storage"
)

// Payload is the export document: the full contents of a tracker.
type Payload struct {
	Exercises        []models.Exercise        `json:"exercises"`
	Routines         []models.Routine         `json:"routines"`
	TrainingSessions []models.TrainingSession `json:"training_sessions"`
}

// Result holds the outcome of an import operation.
type Result struct {
	ExercisesReceived int `json:"exercises_received"`
	ExercisesCreated  int `json:"exercises_created"`
	RoutinesReceived  int `json:"routines_received"`
	RoutinesCreated   int `json:"routines_created"`
	SessionsReceived  int `json:"sessions_received"`
	SessionsCreated   int `json:"sessions_created"`

	Message string `json:"message,omitempty"`
}

// Provider processes Valens JSON exports.
type Provider struct {
	db  *storage.DB
	log *slog.Logger
}

// NewProvider creates a new import provider.
func NewProvider(db *storage.DB, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest decodes an export document and stores its contents.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*Result, error) {
	var payload Payload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}

	result := &Result{
		ExercisesReceived: len(payload.Exercises),
		RoutinesReceived:  len(payload.Routines),
		SessionsReceived:  len(payload.TrainingSessions),
	}

	exerciseIDs, err := p.importExercises(ctx, payload.Exercises, result)
	if err != nil {
		return nil, err
	}
	routineIDs, err := p.importRoutines(ctx, payload.Routines, result)
	if err != nil {
		return nil, err
	}

	for _, session := range payload.TrainingSessions {
		remapped, err := remapSession(session, exerciseIDs, routineIDs)
		if err != nil {
			return nil, err
		}
		if err := forms.ValidateElements(remapped.Elements); err != nil {
			return nil, fmt.Errorf("session %d: %w", session.ID, err)
		}
		if _, err := p.db.CreateTrainingSession(ctx, remapped); err != nil {
			return nil, fmt.Errorf("creating session %d: %w", session.ID, err)
		}
		result.SessionsCreated++
	}

	p.log.Info("import finished",
		"exercises_created", result.ExercisesCreated,
		"routines_created", result.RoutinesCreated,
		"sessions_created", result.SessionsCreated,
	)
	return result, nil
}

// importExercises maps export exercise IDs to local IDs, creating exercises
// whose names are not yet known.
func (p *Provider) importExercises(ctx context.Context, exercises []models.Exercise, result *Result) (map[uint32]uint32, error) {
	names, err := p.db.ExerciseNames(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]uint32, len(names))
	for id, name := range names {
		byName[name] = id
	}

	ids := make(map[uint32]uint32, len(exercises))
	for _, e := range exercises {
		if e.Name == "" {
			return nil, fmt.Errorf("exercise %d: name is empty", e.ID)
		}
		if existing, ok := byName[e.Name]; ok {
			ids[e.ID] = existing
			continue
		}
		created, err := p.db.CreateExercise(ctx, e.Name)
		if err != nil {
			return nil, fmt.Errorf("creating exercise %q: %w", e.Name, err)
		}
		byName[e.Name] = created.ID
		ids[e.ID] = created.ID
		result.ExercisesCreated++
	}
	return ids, nil
}

func (p *Provider) importRoutines(ctx context.Context, routines []models.Routine, result *Result) (map[uint32]uint32, error) {
	existing, err := p.db.ListRoutines(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]uint32, len(existing))
	for _, r := range existing {
		byName[r.Name] = r.ID
	}

	ids := make(map[uint32]uint32, len(routines))
	for _, r := range routines {
		if r.Name == "" {
			return nil, fmt.Errorf("routine %d: name is empty", r.ID)
		}
		if id, ok := byName[r.Name]; ok {
			ids[r.ID] = id
			continue
		}
		created, err := p.db.CreateRoutine(ctx, r.Name, r.Notes)
		if err != nil {
			return nil, fmt.Errorf("creating routine %q: %w", r.Name, err)
		}
		byName[r.Name] = created.ID
		ids[r.ID] = created.ID
		result.RoutinesCreated++
	}
	return ids, nil
}

func remapSession(session models.TrainingSession, exerciseIDs, routineIDs map[uint32]uint32) (models.TrainingSession, error) {
	remapped := session
	remapped.ID = 0

	if session.RoutineID != nil {
		id, ok := routineIDs[*session.RoutineID]
		if !ok {
			return models.TrainingSession{}, fmt.Errorf("session %d: unknown routine %d", session.ID, *session.RoutineID)
		}
		remapped.RoutineID = &id
	}

	remapped.Elements = make([]models.SessionElement, len(session.Elements))
	for i, e := range session.Elements {
		if e.Kind == models.ElementSet {
			id, ok := exerciseIDs[e.ExerciseID]
			if !ok {
				return models.TrainingSession{}, fmt.Errorf("session %d: unknown exercise %d", session.ID, e.ExerciseID)
			}
			e.ExerciseID = id
		}
		remapped.Elements[i] = e
	}
	return remapped, nil
}
