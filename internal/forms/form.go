package forms

import (
	"github.com/Ranveer112/valens/internal/models"
)

// SectionKind discriminates the two section variants of a form.
type SectionKind string

const (
	SectionSet  SectionKind = "set"
	SectionRest SectionKind = "rest"
)

// Section is one guided step: a block of exercise sets or a rest period.
type Section struct {
	Kind       SectionKind
	Exercises  []ExerciseForm // set sections
	TargetTime int            // rest sections, 0 when open-ended
	Automatic  bool           // rest sections
}

// ExerciseForm is one exercise's editable row within a set section.
type ExerciseForm struct {
	Position     int
	ExerciseID   uint32
	ExerciseName string

	Reps   Field[int]
	Time   Field[int]
	Weight Field[float64]
	RPE    Field[float64]

	TargetReps   *int
	TargetTime   *int
	TargetWeight *float64
	TargetRPE    *float64

	PrevReps   *int
	PrevTime   *int
	PrevWeight *float64
	PrevRPE    *float64

	Automatic bool
}

// SetReps records raw reps input.
func (e *ExerciseForm) SetReps(raw string) { e.Reps.setFromInput(raw, parseInt, validReps) }

// SetTime records raw time input (seconds).
func (e *ExerciseForm) SetTime(raw string) { e.Time.setFromInput(raw, parseInt, validTime) }

// SetWeight records raw weight input (kg).
func (e *ExerciseForm) SetWeight(raw string) { e.Weight.setFromInput(raw, parseDecimal, validWeight) }

// SetRPE records raw RPE input.
func (e *ExerciseForm) SetRPE(raw string) { e.RPE.setFromInput(raw, parseDecimal, validRPE) }

// EnterTargetValues fills all four fields from the exercise's target values.
func (e *ExerciseForm) EnterTargetValues() {
	e.Reps.copyFrom(e.TargetReps, renderInt)
	e.Time.copyFrom(e.TargetTime, renderInt)
	e.Weight.copyFrom(e.TargetWeight, renderDecimal)
	e.RPE.copyFrom(e.TargetRPE, renderDecimal)
}

// EnterPreviousValues fills all four fields from the previous session's values.
func (e *ExerciseForm) EnterPreviousValues() {
	e.Reps.copyFrom(e.PrevReps, renderInt)
	e.Time.copyFrom(e.PrevTime, renderInt)
	e.Weight.copyFrom(e.PrevWeight, renderDecimal)
	e.RPE.copyFrom(e.PrevRPE, renderDecimal)
}

func (e *ExerciseForm) changed() bool {
	return e.Reps.Changed || e.Time.Changed || e.Weight.Changed || e.RPE.Changed
}

func (e *ExerciseForm) valid() bool {
	return e.Reps.Valid && e.Time.Valid && e.Weight.Valid && e.RPE.Valid
}

// Form is the editable view of one training session.
type Form struct {
	SessionID    uint32
	Notes        string
	NotesChanged bool
	Sections     []Section
}

// Changed reports whether any field or the notes differ from the stored data.
func (f *Form) Changed() bool {
	if f.NotesChanged {
		return true
	}
	for i := range f.Sections {
		for j := range f.Sections[i].Exercises {
			if f.Sections[i].Exercises[j].changed() {
				return true
			}
		}
	}
	return false
}

// Valid reports whether every field in the form is valid. Saving is refused
// while invalid.
func (f *Form) Valid() bool {
	for i := range f.Sections {
		for j := range f.Sections[i].Exercises {
			if !f.Sections[i].Exercises[j].valid() {
				return false
			}
		}
	}
	return true
}

// SetNotes records edited notes text.
func (f *Form) SetNotes(notes string) {
	f.Notes = notes
	f.NotesChanged = true
}

// Exercise returns the addressed exercise row, or nil when the indices do
// not name one.
func (f *Form) Exercise(sectionIndex, exerciseIndex int) *ExerciseForm {
	if sectionIndex < 0 || sectionIndex >= len(f.Sections) {
		return nil
	}
	s := &f.Sections[sectionIndex]
	if s.Kind != SectionSet || exerciseIndex < 0 || exerciseIndex >= len(s.Exercises) {
		return nil
	}
	return &s.Exercises[exerciseIndex]
}

// Elements converts the form back into a stored element list.
func (f *Form) Elements() []models.SessionElement {
	var elements []models.SessionElement
	for i := range f.Sections {
		s := &f.Sections[i]
		switch s.Kind {
		case SectionSet:
			for j := range s.Exercises {
				e := &s.Exercises[j]
				elements = append(elements, models.SessionElement{
					Kind:         models.ElementSet,
					ExerciseID:   e.ExerciseID,
					Reps:         e.Reps.Parsed,
					Time:         e.Time.Parsed,
					Weight:       e.Weight.Parsed,
					RPE:          e.RPE.Parsed,
					TargetReps:   e.TargetReps,
					TargetTime:   e.TargetTime,
					TargetWeight: e.TargetWeight,
					TargetRPE:    e.TargetRPE,
					Automatic:    e.Automatic,
				})
			}
		case SectionRest:
			var targetTime *int
			if s.TargetTime > 0 {
				t := s.TargetTime
				targetTime = &t
			}
			elements = append(elements, models.SessionElement{
				Kind:       models.ElementRest,
				TargetTime: targetTime,
				Automatic:  s.Automatic,
			})
		}
	}
	return elements
}
