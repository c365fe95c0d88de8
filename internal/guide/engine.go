package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Ranveer112/valens/internal/forms"
	"github.com/Ranveer112/valens/internal/instruments"
	"github.com/Ranveer112/valens/internal/models"
)

var (
	// ErrNotActive is returned by transition operations when no guided
	// session is running.
	ErrNotActive = errors.New("no guided session is active")
	// ErrNoSections is returned when a guide is started for a session
	// without guidable sections.
	ErrNoSections = errors.New("training session has no sections")
)

// Settings control guide behavior, taken from config.
type Settings struct {
	BeepVolume         int
	AutomaticMetronome bool
}

// Engine is the guided-session state machine. All mutations happen inside
// discrete transition methods under one lock; the periodic tick is a pure
// re-evaluation trigger. Persistence to the store happens after local state
// mutation and before any derived notification, so an observer reading the
// persisted record never sees a section index without its timer state.
type Engine struct {
	store    SessionStore
	source   FormSource
	notifier Notifier
	player   instruments.Player
	settings Settings
	log      *slog.Logger

	mu        sync.Mutex
	now       func() time.Time
	sessionID uint32
	form      forms.Form
	state     *guideState
	metronome *instruments.Metronome
	tick      *tickTask
}

// guideState exists exactly while a guide is in a section. Reaching the end
// of the section list destroys it rather than leaving an out-of-range index.
type guideState struct {
	sectionIndex int
	sectionStart time.Time
	timer        *instruments.Timer
}

// NewEngine creates an engine. player may be nil for silent operation.
func NewEngine(store SessionStore, source FormSource, notifier Notifier, player instruments.Player, settings Settings, log *slog.Logger) *Engine {
	return &Engine{
		store:     store,
		source:    source,
		notifier:  notifier,
		player:    player,
		settings:  settings,
		log:       log,
		now:       time.Now,
		metronome: instruments.NewMetronome(settings.BeepVolume, log),
	}
}

// Active reports whether a guided session is running.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != nil
}

// Status is a snapshot of the running guide for API consumers.
type Status struct {
	SessionID    uint32            `json:"session_id"`
	SectionIndex int               `json:"section_index"`
	SectionCount int               `json:"section_count"`
	SectionStart time.Time         `json:"section_start"`
	Timer        models.TimerState `json:"timer"`
	TimerDisplay string            `json:"timer_display,omitempty"`
}

// Status returns the current guide snapshot, or false when inactive.
func (e *Engine) Status() (Status, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return Status{}, false
	}
	return Status{
		SessionID:    e.sessionID,
		SectionIndex: e.state.sectionIndex,
		SectionCount: len(e.form.Sections),
		SectionStart: e.state.sectionStart,
		Timer:        e.state.timer.State(),
		TimerDisplay: e.state.timer.Input(),
	}, true
}

// Start begins guiding the given session from its first section. A guide
// already running for another session is replaced; the ongoing-session
// record is a process-wide singleton.
func (e *Engine) Start(ctx context.Context, sessionID uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	form, err := e.source.SessionForm(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("building session form: %w", err)
	}
	if len(form.Sections) == 0 {
		return ErrNoSections
	}

	e.sessionID = sessionID
	e.form = form
	e.state = &guideState{
		sectionIndex: 0,
		sectionStart: e.now(),
		timer:        instruments.NewTimer(e.settings.BeepVolume, e.log),
	}
	e.updateGuideTimer()
	if e.settings.AutomaticMetronome {
		e.updateMetronome()
	}

	if err := e.store.StartSession(ctx, sessionID, e.record()); err != nil {
		e.log.Warn("failed to persist session start", "session_id", sessionID, "error", err)
	}
	e.showSectionNotification()
	e.updateTicks()
	return nil
}

// Resume restores the guide from the persisted ongoing-session record if it
// matches the given session. The timer's remaining time comes from the
// persisted absolute deadline, which already reflects real elapsed time, not
// from the section duration. Returns false when no matching record exists.
func (e *Engine) Resume(ctx context.Context, sessionID uint32) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.store.OngoingSession(ctx)
	if err != nil {
		return false, fmt.Errorf("reading ongoing session: %w", err)
	}
	if rec == nil || rec.SessionID != sessionID {
		return false, nil
	}

	form, err := e.source.SessionForm(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("building session form: %w", err)
	}

	e.sessionID = sessionID
	e.form = form
	timer := instruments.NewTimer(e.settings.BeepVolume, e.log)
	timer.Restore(rec.Timer, e.now())
	e.state = &guideState{
		sectionIndex: rec.SectionIndex,
		sectionStart: rec.SectionStart,
		timer:        timer,
	}
	if e.settings.AutomaticMetronome && rec.SectionIndex < len(e.form.Sections) {
		e.updateMetronome()
	}
	e.showSectionNotification()
	e.updateTicks()
	return true, nil
}

// Tick drives auto-advancement. It runs once per second while the guide
// timer is active: a timed set whose countdown reached zero records its
// target time and advances; an automatic rest advances when its countdown
// reaches zero.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked(ctx)
}

func (e *Engine) tickLocked(ctx context.Context) {
	if e.state == nil || e.state.sectionIndex >= len(e.form.Sections) {
		return
	}
	section := &e.form.Sections[e.state.sectionIndex]
	switch section.Kind {
	case forms.SectionSet:
		exercise := &section.Exercises[0]
		if exercise.TargetTime == nil || exercise.TargetReps != nil {
			// Nothing to auto-advance on.
			e.state.timer.ClearDuration()
		} else if remaining, ok := e.state.timer.Remaining(); ok && remaining <= 0 {
			if exercise.Time.Parsed == nil || *exercise.Time.Parsed != *exercise.TargetTime {
				exercise.SetTime(strconv.Itoa(*exercise.TargetTime))
			}
			e.nextLocked(ctx)
		}
	case forms.SectionRest:
		if remaining, ok := e.state.timer.Remaining(); ok && remaining <= 0 && section.Automatic {
			e.nextLocked(ctx)
		}
	}
	if e.state != nil {
		e.state.timer.Update(e.now(), e.player)
	}
}

// Next advances to the following section, or ends the guide after the last
// one.
func (e *Engine) Next(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return ErrNotActive
	}
	e.nextLocked(ctx)
	return nil
}

func (e *Engine) nextLocked(ctx context.Context) {
	if e.state.sectionIndex+1 == len(e.form.Sections) {
		e.finishLocked(ctx)
		return
	}

	e.state.sectionIndex++
	e.state.sectionStart = e.now()
	if e.settings.AutomaticMetronome {
		e.updateMetronome()
	}
	e.updateGuideTimer()
	e.persist(ctx)
	e.showSectionNotification()
	e.updateTicks()

	if e.form.Changed() {
		e.saveLocked(ctx)
	}
}

// Previous steps back one section. A no-op on the first section.
func (e *Engine) Previous(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return ErrNotActive
	}
	if e.state.sectionIndex == 0 {
		return nil
	}

	e.state.sectionIndex--
	e.state.sectionStart = e.now()
	e.updateGuideTimer()
	if e.settings.AutomaticMetronome {
		e.updateMetronome()
	}
	e.persist(ctx)
	// No re-show when going back.
	e.notifier.Dismiss()
	e.updateTicks()
	return nil
}

// ToggleTimer manually starts or pauses the section timer without changing
// the section, persisting the new timer state so a reload resumes correctly.
func (e *Engine) ToggleTimer(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return ErrNotActive
	}
	e.state.timer.StartPause(e.now())
	e.persist(ctx)
	e.updateTicks()
	return nil
}

// Exit ends the guide explicitly, clearing the ongoing-session record.
func (e *Engine) Exit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return ErrNotActive
	}
	e.finishLocked(ctx)
	return nil
}

func (e *Engine) finishLocked(ctx context.Context) {
	e.state = nil
	e.metronome.Pause()
	e.notifier.Dismiss()
	if err := e.store.EndSession(ctx); err != nil {
		e.log.Warn("failed to clear ongoing session", "error", err)
	}
	e.updateTicks()
	if e.form.Changed() {
		e.saveLocked(ctx)
	}
}

// Reload rebuilds the form from stored data after an external save, then
// recomputes the section timer. A no-op while inactive.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil
	}
	return e.reloadLocked(ctx)
}

func (e *Engine) reloadLocked(ctx context.Context) error {
	form, err := e.source.SessionForm(ctx, e.sessionID)
	if err != nil {
		return fmt.Errorf("rebuilding session form: %w", err)
	}
	e.form = form
	if e.state != nil {
		if e.state.sectionIndex >= len(e.form.Sections) {
			e.finishLocked(ctx)
			return nil
		}
		e.updateGuideTimer()
		e.updateTicks()
	}
	return nil
}

// Teardown stops the periodic task, pauses the metronome, and dismisses the
// notification. The ongoing-session record is kept so the guide resumes on
// the next start. Invoked by whatever owns the engine's lifetime.
func (e *Engine) Teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick.cancel()
	e.tick = nil
	e.metronome.Pause()
	e.notifier.Dismiss()
}

// saveLocked persists recorded set data changed during the guide. A failed
// write leaves local state untouched; recording continues optimistically.
func (e *Engine) saveLocked(ctx context.Context) {
	notes := e.form.Notes
	if err := e.store.ModifySession(ctx, e.sessionID, &notes, e.form.Elements()); err != nil {
		e.log.Warn("failed to save session", "session_id", e.sessionID, "error", err)
		return
	}
	if err := e.reloadLocked(ctx); err != nil {
		e.log.Warn("failed to reload session form", "session_id", e.sessionID, "error", err)
	}
}

// updateGuideTimer recomputes the timer for the current section: unset for
// rep-targeted sets, counting down the remainder of the target for timed
// sets and rests. Elapsed time is measured from the section start, so a
// refresh never restarts the countdown.
func (e *Engine) updateGuideTimer() {
	if len(e.form.Sections) == 0 || e.state == nil {
		return
	}
	e.state.timer.Unset()
	elapsed := int64(e.now().Sub(e.state.sectionStart) / time.Second)
	section := &e.form.Sections[e.state.sectionIndex]
	switch section.Kind {
	case forms.SectionSet:
		exercise := &section.Exercises[0]
		if exercise.TargetReps != nil {
			return
		}
		if exercise.TargetTime != nil {
			e.state.timer.Set(int64(*exercise.TargetTime)-elapsed, e.now())
			if exercise.Automatic {
				e.state.timer.Start(e.now())
			}
		}
	case forms.SectionRest:
		if section.TargetTime > 0 {
			e.state.timer.Set(int64(section.TargetTime)-elapsed, e.now())
			e.state.timer.Start(e.now())
		}
	}
}

// updateMetronome arms the metronome for the current section: a timed,
// rep-targeted set beats at its target-time interval; a rest pauses it.
func (e *Engine) updateMetronome() {
	section := &e.form.Sections[e.state.sectionIndex]
	switch section.Kind {
	case forms.SectionSet:
		exercise := &section.Exercises[0]
		if exercise.TargetReps != nil && exercise.TargetTime != nil {
			e.metronome.Interval = *exercise.TargetTime
			e.metronome.StressedBeat = 1
			e.metronome.Start(e.player)
		}
	case forms.SectionRest:
		e.metronome.Pause()
	}
}

// persist pushes the transition triple to the store. The engine tolerates a
// failed write by continuing with local state unaffected.
func (e *Engine) persist(ctx context.Context) {
	if err := e.store.UpdateSession(ctx, e.record()); err != nil {
		e.log.Warn("failed to persist guide state", "session_id", e.sessionID, "error", err)
	}
}

func (e *Engine) record() models.OngoingSession {
	return models.OngoingSession{
		SessionID:    e.sessionID,
		SectionIndex: e.state.sectionIndex,
		SectionStart: e.state.sectionStart,
		Timer:        e.state.timer.State(),
	}
}

func (e *Engine) showSectionNotification() {
	if e.state == nil || e.state.sectionIndex >= len(e.form.Sections) {
		return
	}
	section := &e.form.Sections[e.state.sectionIndex]
	var title, body string
	switch section.Kind {
	case forms.SectionSet:
		exercise := &section.Exercises[0]
		title = exercise.ExerciseName
		if previously := FormatSet(exercise.PrevReps, exercise.PrevTime, exercise.PrevWeight, exercise.PrevRPE); previously != "" {
			body = fmt.Sprintf("Previously:\n%s\n", previously)
		}
		if target := FormatSet(exercise.TargetReps, exercise.TargetTime, exercise.TargetWeight, exercise.TargetRPE); target != "" {
			body += fmt.Sprintf("Target:\n%s\n", target)
		}
	case forms.SectionRest:
		title = "Rest"
		if section.TargetTime > 0 {
			body = fmt.Sprintf("%d s", section.TargetTime)
		}
	}
	e.notifier.Show(title, body)
}

// updateTicks re-derives the 1-second tick task from timer activity so the
// task exists exactly while the guide timer is active.
func (e *Engine) updateTicks() {
	active := e.state != nil && e.state.timer.IsActive()
	switch {
	case active && e.tick == nil:
		e.tick = startTickTask(time.Second, func() {
			e.Tick(context.Background())
		})
	case !active && e.tick != nil:
		e.tick.cancel()
		e.tick = nil
	}
}
