package mcp

import (
	"context"
	"time"

	"github.com/Ranveer112/valens/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// parseDate accepts YYYY-MM-DD date strings from tool arguments.
func parseDate(s string) (time.Time, error) {
	return time.Parse(models.DateLayout, s)
}

// --- Tool definitions ---

var toolGetExercises = mcp.NewTool("get_exercises",
	mcp.WithDescription("List all exercises with their IDs."),
)

var toolGetRoutines = mcp.NewTool("get_routines",
	mcp.WithDescription("List all routines (reusable session templates) with their IDs and notes."),
)

var toolGetTrainingSessions = mcp.NewTool("get_training_sessions",
	mcp.WithDescription("Query training sessions with their recorded sets and rests, most recent first."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
	mcp.WithNumber("routine_id", mcp.Description("Filter by routine ID.")),
)

var toolGetTrainingSession = mcp.NewTool("get_training_session",
	mcp.WithDescription("Retrieve one training session by ID, including its full element list."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Training session ID")),
)

var toolGetPreviousSets = mcp.NewTool("get_previous_sets",
	mcp.WithDescription("Set history for one exercise across sessions, most recent first. Each entry carries the session date plus reps, time, weight, and RPE."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sets to return. Defaults to 50.")),
)

var toolGetOngoingSession = mcp.NewTool("get_ongoing_session",
	mcp.WithDescription("State of the currently guided session: session ID, section index, section start time, and countdown timer state. Empty when no guide is running."),
)

// --- Tool handlers ---

func (h *handlers) getExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp get_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolResultJSON(exercises)
}

func (h *handlers) getRoutines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routines, err := h.ds.ListRoutines(ctx)
	if err != nil {
		h.log.Error("mcp get_routines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolResultJSON(routines)
}

func (h *handlers) getTrainingSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	var err error
	if s := req.GetString("start", ""); s != "" {
		if start, err = parseDate(s); err != nil {
			return mcp.NewToolResultError("invalid start date: " + err.Error()), nil
		}
	}
	if s := req.GetString("end", ""); s != "" {
		if end, err = parseDate(s); err != nil {
			return mcp.NewToolResultError("invalid end date: " + err.Error()), nil
		}
	}
	routineID := uint32(req.GetInt("routine_id", 0))

	sessions, err := h.ds.ListTrainingSessions(ctx)
	if err != nil {
		h.log.Error("mcp get_training_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	filtered := make([]models.TrainingSession, 0, len(sessions))
	for _, t := range sessions {
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		if routineID != 0 && (t.RoutineID == nil || *t.RoutineID != routineID) {
			continue
		}
		filtered = append(filtered, t)
	}
	return toolResultJSON(filtered)
}

func (h *handlers) getTrainingSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	session, err := h.ds.GetTrainingSession(ctx, uint32(id))
	if err != nil {
		h.log.Error("mcp get_training_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolResultJSON(session)
}

// previousSet is one historical set of an exercise with its session context.
type previousSet struct {
	SessionID uint32      `json:"session_id"`
	Date      models.Date `json:"date"`
	Reps      *int        `json:"reps,omitempty"`
	Time      *int        `json:"time,omitempty"`
	Weight    *float64    `json:"weight,omitempty"`
	RPE       *float64    `json:"rpe,omitempty"`
}

func (h *handlers) getPreviousSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	limit := req.GetInt("limit", 50)

	sessions, err := h.ds.ListTrainingSessions(ctx)
	if err != nil {
		h.log.Error("mcp get_previous_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	sets := []previousSet{}
	for _, t := range sessions {
		for _, e := range t.Elements {
			if e.Kind != models.ElementSet || e.ExerciseID != uint32(exerciseID) {
				continue
			}
			sets = append(sets, previousSet{
				SessionID: t.ID,
				Date:      t.Date,
				Reps:      e.Reps,
				Time:      e.Time,
				Weight:    e.Weight,
				RPE:       e.RPE,
			})
			if len(sets) == limit {
				return toolResultJSON(sets)
			}
		}
	}
	return toolResultJSON(sets)
}

func (h *handlers) getOngoingSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := h.ds.OngoingSession(ctx)
	if err != nil {
		h.log.Error("mcp get_ongoing_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if rec == nil {
		return mcp.NewToolResultText("no guided session is ongoing"), nil
	}
	return toolResultJSON(rec)
}

func toolResultJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
