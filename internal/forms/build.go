package forms

import (
	"fmt"
	"sort"

	"github.com/Ranveer112/valens/internal/models"
)

// Build converts a stored session's element list into editable sections.
// others holds the remaining stored sessions; the most recent one on the
// same routine supplies the previous-session values. exerciseNames maps
// exercise IDs to display names.
func Build(session *models.TrainingSession, others []models.TrainingSession, exerciseNames map[uint32]string) Form {
	if session == nil {
		return Form{}
	}

	prevSets := previousSets(session, others)
	prevCursor := make(map[uint32]int)

	form := Form{
		SessionID: session.ID,
		Notes:     session.Notes,
	}

	var exercises []ExerciseForm
	position := 0
	flush := func() {
		if len(exercises) > 0 {
			form.Sections = append(form.Sections, Section{Kind: SectionSet, Exercises: exercises})
			position = 0
		}
		exercises = nil
	}

	for _, e := range session.Elements {
		switch e.Kind {
		case models.ElementSet:
			// A timed hold always forms its own section.
			if e.IsTimedHold() {
				flush()
			}

			cursor, seen := prevCursor[e.ExerciseID]
			if seen {
				cursor++
			}
			prevCursor[e.ExerciseID] = cursor
			var prevReps, prevTime *int
			var prevWeight, prevRPE *float64
			if sets := prevSets[e.ExerciseID]; cursor < len(sets) {
				prevReps = sets[cursor].Reps
				prevTime = sets[cursor].Time
				prevWeight = sets[cursor].Weight
				prevRPE = sets[cursor].RPE
			}

			name, ok := exerciseNames[e.ExerciseID]
			if !ok {
				name = fmt.Sprintf("Exercise#%d", e.ExerciseID)
			}
			exercises = append(exercises, ExerciseForm{
				Position:     position,
				ExerciseID:   e.ExerciseID,
				ExerciseName: name,
				Reps:         IntField(e.Reps),
				Time:         IntField(e.Time),
				Weight:       DecimalField(e.Weight),
				RPE:          DecimalField(e.RPE),
				TargetReps:   e.TargetReps,
				TargetTime:   e.TargetTime,
				TargetWeight: e.TargetWeight,
				TargetRPE:    e.TargetRPE,
				PrevReps:     prevReps,
				PrevTime:     prevTime,
				PrevWeight:   prevWeight,
				PrevRPE:      prevRPE,
				Automatic:    e.Automatic,
			})
			position++

			if e.IsTimedHold() {
				flush()
			}

		case models.ElementRest:
			flush()
			targetTime := 0
			if e.TargetTime != nil {
				targetTime = *e.TargetTime
			}
			form.Sections = append(form.Sections, Section{
				Kind:       SectionRest,
				TargetTime: targetTime,
				Automatic:  e.Automatic,
			})
		}
	}
	flush()

	return form
}

// previousSets indexes the set elements of the most recent prior session for
// the same routine, per exercise ID in original order. The Nth set of an
// exercise in the current session matches the Nth entry here; a cursor past
// the end means no previous values.
func previousSets(session *models.TrainingSession, others []models.TrainingSession) map[uint32][]models.SessionElement {
	sets := make(map[uint32][]models.SessionElement)

	var candidates []models.TrainingSession
	for _, t := range others {
		if t.ID == session.ID || t.Date.After(session.Date.Time) {
			continue
		}
		if session.RoutineID != nil && !ptrEqual(t.RoutineID, session.RoutineID) {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return sets
	}

	// Latest date wins; equal dates are broken by the highest ID.
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].Date.Equal(candidates[j].Date.Time) {
			return candidates[i].Date.Before(candidates[j].Date.Time)
		}
		return candidates[i].ID < candidates[j].ID
	})
	previous := candidates[len(candidates)-1]

	for _, e := range previous.Elements {
		if e.Kind == models.ElementSet {
			sets[e.ExerciseID] = append(sets[e.ExerciseID], e)
		}
	}
	return sets
}
