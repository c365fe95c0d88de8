package mcp

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Ranveer112/valens/internal/models"
	"github.com/Ranveer112/valens/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// fakeDataSource serves canned training data to tool handlers.
type fakeDataSource struct {
	exercises []models.Exercise
	routines  []models.Routine
	sessions  []models.TrainingSession
	ongoing   *models.OngoingSession
}

func (f *fakeDataSource) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	return f.exercises, nil
}

func (f *fakeDataSource) ListRoutines(ctx context.Context) ([]models.Routine, error) {
	return f.routines, nil
}

func (f *fakeDataSource) ListTrainingSessions(ctx context.Context) ([]models.TrainingSession, error) {
	return f.sessions, nil
}

func (f *fakeDataSource) GetTrainingSession(ctx context.Context, id uint32) (*models.TrainingSession, error) {
	for i := range f.sessions {
		if f.sessions[i].ID == id {
			return &f.sessions[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeDataSource) OngoingSession(ctx context.Context) (*models.OngoingSession, error) {
	return f.ongoing, nil
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func intPtr(v int) *int { return &v }

// TestGetPreviousSetsFiltersAndLimits verifies the set history tool returns
// only the requested exercise's sets, most recent session first, capped at
// the limit.
func TestGetPreviousSetsFiltersAndLimits(t *testing.T) {
	ds := &fakeDataSource{
		sessions: []models.TrainingSession{
			{
				ID:   2,
				Date: models.NewDate(2026, time.August, 20),
				Elements: []models.SessionElement{
					{Kind: models.ElementSet, ExerciseID: 1, Reps: intPtr(10)},
					{Kind: models.ElementSet, ExerciseID: 2, Reps: intPtr(5)},
					{Kind: models.ElementSet, ExerciseID: 1, Reps: intPtr(8)},
				},
			},
			{
				ID:   1,
				Date: models.NewDate(2026, time.August, 13),
				Elements: []models.SessionElement{
					{Kind: models.ElementSet, ExerciseID: 1, Reps: intPtr(9)},
				},
			},
		},
	}
	h := &handlers{ds: ds, log: slog.Default()}

	result, err := h.getPreviousSets(context.Background(), toolRequest(map[string]any{
		"exercise_id": 1,
		"limit":       2,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("tool returned error result: %+v", result)
	}

	text := resultText(t, result)
	for _, want := range []string{`"session_id":2`, `"reps":10`, `"reps":8`} {
		if !strings.Contains(text, want) {
			t.Errorf("result %q missing %q", text, want)
		}
	}
	if strings.Contains(text, `"reps":9`) {
		t.Errorf("result %q includes set beyond limit", text)
	}
	if strings.Contains(text, `"reps":5`) {
		t.Errorf("result %q includes another exercise's set", text)
	}
}

// TestGetTrainingSessionsRoutineFilter verifies the routine_id filter.
func TestGetTrainingSessionsRoutineFilter(t *testing.T) {
	routineID := uint32(4)
	ds := &fakeDataSource{
		sessions: []models.TrainingSession{
			{ID: 1, RoutineID: &routineID, Date: models.NewDate(2026, time.August, 20)},
			{ID: 2, Date: models.NewDate(2026, time.August, 21)},
		},
	}
	h := &handlers{ds: ds, log: slog.Default()}

	result, err := h.getTrainingSessions(context.Background(), toolRequest(map[string]any{
		"routine_id": 4,
	}))
	if err != nil {
		t.Fatal(err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, `"id":1`) {
		t.Errorf("result %q missing routine session", text)
	}
	if strings.Contains(text, `"id":2`) {
		t.Errorf("result %q includes unfiltered session", text)
	}
}

// TestGetOngoingSessionEmpty verifies the no-guide case returns text, not an
// error.
func TestGetOngoingSessionEmpty(t *testing.T) {
	h := &handlers{ds: &fakeDataSource{}, log: slog.Default()}

	result, err := h.getOngoingSession(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("tool returned error result: %+v", result)
	}
}

// TestGetTrainingSessionRequiresID verifies the missing-argument error path.
func TestGetTrainingSessionRequiresID(t *testing.T) {
	h := &handlers{ds: &fakeDataSource{}, log: slog.Default()}

	result, err := h.getTrainingSession(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing id")
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("tool result content is %T, want text", result.Content[0])
	}
	return text.Text
}

