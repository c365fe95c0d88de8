package forms

import (
	"fmt"

	"github.com/Ranveer112/valens/internal/models"
)

// ValidateElements checks a stored element list against the same bounds the
// editable fields enforce, so data written through the API can never exceed
// what the form would accept.
func ValidateElements(elements []models.SessionElement) error {
	for i, e := range elements {
		switch e.Kind {
		case models.ElementSet:
			if e.ExerciseID == 0 {
				return fmt.Errorf("element %d: set requires an exercise", i)
			}
			if e.Reps != nil && !validReps(*e.Reps) {
				return fmt.Errorf("element %d: reps out of range", i)
			}
			if e.Time != nil && !validTime(*e.Time) {
				return fmt.Errorf("element %d: time out of range", i)
			}
			if e.Weight != nil && !validWeight(*e.Weight) {
				return fmt.Errorf("element %d: weight out of range", i)
			}
			if e.RPE != nil && !validRPE(*e.RPE) {
				return fmt.Errorf("element %d: rpe out of range", i)
			}
			if e.TargetReps != nil && !validReps(*e.TargetReps) {
				return fmt.Errorf("element %d: target_reps out of range", i)
			}
			if e.TargetTime != nil && !validTime(*e.TargetTime) {
				return fmt.Errorf("element %d: target_time out of range", i)
			}
			if e.TargetWeight != nil && !validWeight(*e.TargetWeight) {
				return fmt.Errorf("element %d: target_weight out of range", i)
			}
			if e.TargetRPE != nil && !validRPE(*e.TargetRPE) {
				return fmt.Errorf("element %d: target_rpe out of range", i)
			}
		case models.ElementRest:
			if e.TargetTime != nil && !validTime(*e.TargetTime) {
				return fmt.Errorf("element %d: target_time out of range", i)
			}
		default:
			return fmt.Errorf("element %d: unknown kind %q", i, e.Kind)
		}
	}
	return nil
}
