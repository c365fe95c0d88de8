package models

// Exercise is a named movement that sets refer to.
type Exercise struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// Routine is a reusable session template.
type Routine struct {
	ID    uint32 `json:"id"`
	Name  string `json:"name"`
	Notes string `json:"notes,omitempty"`
}

// ElementKind discriminates the two element variants of a training session.
type ElementKind string

const (
	ElementSet  ElementKind = "set"
	ElementRest ElementKind = "rest"
)

// SessionElement is one entry in a training session's ordered element list:
// either a recorded exercise set or a rest period. Optional numeric fields
// are nil when not recorded or not targeted.
type SessionElement struct {
	Kind ElementKind `json:"kind"`

	// Set fields.
	ExerciseID   uint32   `json:"exercise_id,omitempty"`
	Reps         *int     `json:"reps,omitempty"`
	Time         *int     `json:"time,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	RPE          *float64 `json:"rpe,omitempty"`
	TargetReps   *int     `json:"target_reps,omitempty"`
	TargetWeight *float64 `json:"target_weight,omitempty"`
	TargetRPE    *float64 `json:"target_rpe,omitempty"`

	// TargetTime is shared by both variants.
	TargetTime *int `json:"target_time,omitempty"`

	Automatic bool `json:"automatic"`
}

// IsTimedHold reports whether a set element is a standalone timed hold
// (time target without a rep target). Such elements always form their own
// form section.
func (e SessionElement) IsTimedHold() bool {
	return e.Kind == ElementSet && e.TargetTime != nil && e.TargetReps == nil
}

// TrainingSession is one recorded (or planned) workout.
type TrainingSession struct {
	ID        uint32           `json:"id"`
	RoutineID *uint32          `json:"routine_id,omitempty"`
	Date      Date             `json:"date"`
	Notes     string           `json:"notes,omitempty"`
	Elements  []SessionElement `json:"elements"`
}
