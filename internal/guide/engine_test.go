package guide

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Ranveer112/valens/internal/forms"
	"github.com/Ranveer112/valens/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

// fakeStore is an in-memory SessionStore recording every call.
type fakeStore struct {
	rec        *models.OngoingSession
	starts     int
	updates    int
	ends       int
	savedNotes []string
	saved      [][]models.SessionElement
}

func (s *fakeStore) StartSession(ctx context.Context, sessionID uint32, rec models.OngoingSession) error {
	r := rec
	s.rec = &r
	s.starts++
	return nil
}

func (s *fakeStore) UpdateSession(ctx context.Context, rec models.OngoingSession) error {
	r := rec
	s.rec = &r
	s.updates++
	return nil
}

func (s *fakeStore) EndSession(ctx context.Context) error {
	s.rec = nil
	s.ends++
	return nil
}

func (s *fakeStore) OngoingSession(ctx context.Context) (*models.OngoingSession, error) {
	if s.rec == nil {
		return nil, nil
	}
	r := *s.rec
	return &r, nil
}

func (s *fakeStore) ModifySession(ctx context.Context, sessionID uint32, notes *string, elements []models.SessionElement) error {
	if notes != nil {
		s.savedNotes = append(s.savedNotes, *notes)
	}
	s.saved = append(s.saved, elements)
	return nil
}

// fakeSource rebuilds the form from a session fixture on every call, the way
// the real store does.
type fakeSource struct {
	session *models.TrainingSession
	names   map[uint32]string
	err     error
	calls   int
}

func (s *fakeSource) SessionForm(ctx context.Context, sessionID uint32) (forms.Form, error) {
	s.calls++
	if s.err != nil {
		return forms.Form{}, s.err
	}
	return forms.Build(s.session, nil, s.names), nil
}

type notification struct {
	title string
	body  string
}

type fakeNotifier struct {
	shown     []notification
	dismissed int
}

func (n *fakeNotifier) Show(title, body string) {
	n.shown = append(n.shown, notification{title, body})
}

func (n *fakeNotifier) Dismiss() {
	n.dismissed++
}

var baseTime = time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC)

// testClock is a controllable clock safe to advance while tick goroutines
// read it.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: baseTime}
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

// newTestEngine wires an engine with fakes and a controllable clock.
func newTestEngine(source *fakeSource, store *fakeStore, notifier *fakeNotifier, settings Settings) (*Engine, *testClock) {
	e := NewEngine(store, source, notifier, nil, settings, testLogger())
	clock := newTestClock()
	e.now = clock.now
	return e, clock
}

// benchSession is a typical two-exercise session: a rep-targeted set followed
// by an automatic rest, then a second set.
func benchSession() *models.TrainingSession {
	return &models.TrainingSession{
		ID:        7,
		Date:      models.NewDate(2026, 8, 20),
		RoutineID: nil,
		Elements: []models.SessionElement{
			{Kind: models.ElementSet, ExerciseID: 1, TargetReps: intPtr(8)},
			{Kind: models.ElementRest, TargetTime: intPtr(60), Automatic: true},
			{Kind: models.ElementSet, ExerciseID: 1, TargetReps: intPtr(8)},
		},
	}
}

func benchNames() map[uint32]string {
	return map[uint32]string{1: "Bench Press"}
}

// TestEngineStart verifies that starting a guide lands on the first section,
// persists the record before the caller returns, and shows the section.
func TestEngineStart(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{session: benchSession(), names: benchNames()}
	notifier := &fakeNotifier{}
	e, _ := newTestEngine(source, store, notifier, Settings{BeepVolume: 100})
	defer e.Teardown()

	if err := e.Start(context.Background(), 7); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	status, ok := e.Status()
	if !ok {
		t.Fatal("no status after start")
	}
	if status.SessionID != 7 || status.SectionIndex != 0 || status.SectionCount != 3 {
		t.Errorf("status = %+v, want session 7 at section 0 of 3", status)
	}
	if status.Timer.Kind != models.TimerUnset {
		t.Errorf("timer kind = %v, want unset for a rep-targeted set", status.Timer.Kind)
	}
	if !status.SectionStart.Equal(baseTime) {
		t.Errorf("section start = %v, want %v", status.SectionStart, baseTime)
	}

	if store.starts != 1 || store.rec == nil {
		t.Fatalf("starts = %d, rec = %v, want one persisted record", store.starts, store.rec)
	}
	if store.rec.SessionID != 7 || store.rec.SectionIndex != 0 {
		t.Errorf("persisted record = %+v", store.rec)
	}
	if len(notifier.shown) != 1 || notifier.shown[0].title != "Bench Press" {
		t.Errorf("notifications = %+v, want one for Bench Press", notifier.shown)
	}
}

// TestEngineStartNoSections verifies a session without elements cannot be
// guided.
func TestEngineStartNoSections(t *testing.T) {
	source := &fakeSource{session: &models.TrainingSession{ID: 3, Date: models.NewDate(2026, 8, 20)}}
	e, _ := newTestEngine(source, &fakeStore{}, &fakeNotifier{}, Settings{})
	defer e.Teardown()

	if err := e.Start(context.Background(), 3); !errors.Is(err, ErrNoSections) {
		t.Errorf("start error = %v, want ErrNoSections", err)
	}
	if e.Active() {
		t.Error("engine active after refused start")
	}
}

// TestEngineNext verifies advancing into a rest section arms its countdown
// and persists the new position.
func TestEngineNext(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{session: benchSession(), names: benchNames()}
	notifier := &fakeNotifier{}
	e, clock := newTestEngine(source, store, notifier, Settings{BeepVolume: 100})
	defer e.Teardown()

	if err := e.Start(context.Background(), 7); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	clock.advance(25 * time.Second)
	if err := e.Next(context.Background()); err != nil {
		t.Fatalf("next failed: %v", err)
	}

	status, _ := e.Status()
	if status.SectionIndex != 1 {
		t.Fatalf("section index = %d, want 1", status.SectionIndex)
	}
	if status.Timer.Kind != models.TimerActive {
		t.Fatalf("timer kind = %v, want active during rest", status.Timer.Kind)
	}
	wantDeadline := clock.now().Add(60 * time.Second)
	if status.Timer.TargetTime == nil || !status.Timer.TargetTime.Equal(wantDeadline) {
		t.Errorf("timer target = %v, want %v", status.Timer.TargetTime, wantDeadline)
	}
	if store.rec == nil || store.rec.SectionIndex != 1 {
		t.Errorf("persisted record = %+v, want section 1", store.rec)
	}
	if len(notifier.shown) != 2 || notifier.shown[1].title != "Rest" {
		t.Errorf("notifications = %+v, want a rest notification", notifier.shown)
	}
}

// TestEngineNextPastLastEnds verifies that advancing past the final section
// ends the guide and clears the persisted record exactly once.
func TestEngineNextPastLastEnds(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{session: benchSession(), names: benchNames()}
	notifier := &fakeNotifier{}
	e, _ := newTestEngine(source, store, notifier, Settings{})
	defer e.Teardown()

	ctx := context.Background()
	if err := e.Start(ctx, 7); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := e.Next(ctx); err != nil {
			t.Fatalf("next %d failed: %v", i, err)
		}
	}

	if e.Active() {
		t.Error("engine still active past the last section")
	}
	if store.ends != 1 {
		t.Errorf("ends = %d, want 1", store.ends)
	}
	if notifier.dismissed == 0 {
		t.Error("notification not dismissed at the end")
	}
	if err := e.Next(ctx); !errors.Is(err, ErrNotActive) {
		t.Errorf("next after end = %v, want ErrNotActive", err)
	}
}

// TestEnginePrevious verifies stepping back, and that the first section is a
// floor.
func TestEnginePrevious(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{session: benchSession(), names: benchNames()}
	e, _ := newTestEngine(source, store, &fakeNotifier{}, Settings{})
	defer e.Teardown()

	ctx := context.Background()
	if err := e.Start(ctx, 7); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := e.Previous(ctx); err != nil {
		t.Fatalf("previous on first section failed: %v", err)
	}
	if status, _ := e.Status(); status.SectionIndex != 0 {
		t.Errorf("section index = %d, want to stay at 0", status.SectionIndex)
	}

	if err := e.Next(ctx); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if err := e.Previous(ctx); err != nil {
		t.Fatalf("previous failed: %v", err)
	}
	status, _ := e.Status()
	if status.SectionIndex != 0 {
		t.Errorf("section index = %d, want 0", status.SectionIndex)
	}
	if store.rec == nil || store.rec.SectionIndex != 0 {
		t.Errorf("persisted record = %+v, want section 0", store.rec)
	}
}

// TestEngineResume verifies the guide restores from the persisted record with
// the timer counting from its absolute deadline, and refuses records for
// other sessions.
func TestEngineResume(t *testing.T) {
	deadline := baseTime.Add(20 * time.Second)
	store := &fakeStore{rec: &models.OngoingSession{
		SessionID:    7,
		SectionIndex: 1,
		SectionStart: baseTime.Add(-40 * time.Second),
		Timer:        models.ActiveTimer(deadline),
	}}
	source := &fakeSource{session: benchSession(), names: benchNames()}
	e, _ := newTestEngine(source, store, &fakeNotifier{}, Settings{})
	defer e.Teardown()

	resumed, err := e.Resume(context.Background(), 7)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if !resumed {
		t.Fatal("matching record not resumed")
	}

	status, _ := e.Status()
	if status.SectionIndex != 1 {
		t.Errorf("section index = %d, want 1", status.SectionIndex)
	}
	if status.Timer.Kind != models.TimerActive {
		t.Fatalf("timer kind = %v, want active", status.Timer.Kind)
	}
	if status.Timer.TargetTime == nil || !status.Timer.TargetTime.Equal(deadline) {
		t.Errorf("timer target = %v, want restored deadline %v", status.Timer.TargetTime, deadline)
	}
	if got := status.TimerDisplay; got != "20" {
		t.Errorf("timer display = %q, want remaining from deadline, %q", got, "20")
	}
}

// TestEngineResumeNoMatch verifies Resume reports false for a different
// session and for an absent record.
func TestEngineResumeNoMatch(t *testing.T) {
	store := &fakeStore{rec: &models.OngoingSession{SessionID: 9}}
	source := &fakeSource{session: benchSession(), names: benchNames()}
	e, _ := newTestEngine(source, store, &fakeNotifier{}, Settings{})
	defer e.Teardown()

	if resumed, err := e.Resume(context.Background(), 7); err != nil || resumed {
		t.Errorf("resume = %v, %v, want false for another session's record", resumed, err)
	}

	store.rec = nil
	if resumed, err := e.Resume(context.Background(), 7); err != nil || resumed {
		t.Errorf("resume = %v, %v, want false without a record", resumed, err)
	}
	if e.Active() {
		t.Error("engine active after refused resume")
	}
}

// TestEngineToggleTimer verifies the manual timer toggle persists the new
// timer state.
func TestEngineToggleTimer(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{session: benchSession(), names: benchNames()}
	e, _ := newTestEngine(source, store, &fakeNotifier{}, Settings{})
	defer e.Teardown()

	ctx := context.Background()
	if err := e.Start(ctx, 7); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := e.Next(ctx); err != nil {
		t.Fatalf("next failed: %v", err)
	}

	if err := e.ToggleTimer(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	status, _ := e.Status()
	if status.Timer.Kind != models.TimerPaused {
		t.Errorf("timer kind = %v, want paused after toggle", status.Timer.Kind)
	}
	if store.rec == nil || store.rec.Timer.Kind != models.TimerPaused {
		t.Errorf("persisted timer = %+v, want paused", store.rec)
	}
}

// TestEngineTickAdvancesAutomaticRest verifies an automatic rest advances on
// its own once the countdown runs out, while a manual one waits.
func TestEngineTickAdvancesAutomaticRest(t *testing.T) {
	session := benchSession()
	store := &fakeStore{}
	source := &fakeSource{session: session, names: benchNames()}
	e, clock := newTestEngine(source, store, &fakeNotifier{}, Settings{})
	defer e.Teardown()

	ctx := context.Background()
	if err := e.Start(ctx, 7); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := e.Next(ctx); err != nil {
		t.Fatalf("next failed: %v", err)
	}

	// Not due yet.
	clock.advance(30 * time.Second)
	e.Tick(ctx)
	if status, _ := e.Status(); status.SectionIndex != 1 {
		t.Fatalf("section index = %d, want rest still running", status.SectionIndex)
	}

	// The first due tick refreshes the display; the next one advances.
	clock.advance(31 * time.Second)
	e.Tick(ctx)
	e.Tick(ctx)
	status, ok := e.Status()
	if !ok || status.SectionIndex != 2 {
		t.Errorf("section index = %d (ok=%v), want auto-advanced to 2", status.SectionIndex, ok)
	}
}

// TestEngineTickRecordsTimedSet verifies a finished automatic timed hold
// records its target time and, as the only section, ends the guide with the
// recorded value saved.
func TestEngineTickRecordsTimedSet(t *testing.T) {
	session := &models.TrainingSession{
		ID:   11,
		Date: models.NewDate(2026, 8, 20),
		Elements: []models.SessionElement{
			{Kind: models.ElementSet, ExerciseID: 1, TargetTime: intPtr(5), Automatic: true},
		},
	}
	store := &fakeStore{}
	source := &fakeSource{session: session, names: benchNames()}
	e, clock := newTestEngine(source, store, &fakeNotifier{}, Settings{})
	defer e.Teardown()

	ctx := context.Background()
	if err := e.Start(ctx, 11); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if status, _ := e.Status(); status.Timer.Kind != models.TimerActive {
		t.Fatalf("timer kind = %v, want active for automatic hold", status.Timer.Kind)
	}

	clock.advance(6 * time.Second)
	e.Tick(ctx)
	e.Tick(ctx)

	if e.Active() {
		t.Error("engine still active after the only section finished")
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d times, want 1", len(store.saved))
	}
	elements := store.saved[0]
	if len(elements) != 1 || elements[0].Time == nil || *elements[0].Time != 5 {
		t.Errorf("saved elements = %+v, want recorded time 5", elements)
	}
	if store.ends != 1 {
		t.Errorf("ends = %d, want 1", store.ends)
	}
}

// TestEngineExit verifies an explicit exit clears the record and saves
// nothing when nothing changed.
func TestEngineExit(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{session: benchSession(), names: benchNames()}
	e, _ := newTestEngine(source, store, &fakeNotifier{}, Settings{})
	defer e.Teardown()

	ctx := context.Background()
	if err := e.Start(ctx, 7); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := e.Exit(ctx); err != nil {
		t.Fatalf("exit failed: %v", err)
	}
	if e.Active() {
		t.Error("engine active after exit")
	}
	if store.ends != 1 {
		t.Errorf("ends = %d, want 1", store.ends)
	}
	if len(store.saved) != 0 {
		t.Errorf("saved %d times with an unchanged form, want 0", len(store.saved))
	}
	if err := e.Exit(ctx); !errors.Is(err, ErrNotActive) {
		t.Errorf("second exit = %v, want ErrNotActive", err)
	}
}

// TestEngineReloadAfterShrink verifies a reload that drops the current
// section index ends the guide instead of leaving it out of range.
func TestEngineReloadAfterShrink(t *testing.T) {
	session := benchSession()
	store := &fakeStore{}
	source := &fakeSource{session: session, names: benchNames()}
	e, _ := newTestEngine(source, store, &fakeNotifier{}, Settings{})
	defer e.Teardown()

	ctx := context.Background()
	if err := e.Start(ctx, 7); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := e.Next(ctx); err != nil {
		t.Fatalf("next failed: %v", err)
	}

	session.Elements = session.Elements[:1]
	if err := e.Reload(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if e.Active() {
		t.Error("engine active at an out-of-range section")
	}
	if store.ends != 1 {
		t.Errorf("ends = %d, want 1", store.ends)
	}
}

// TestEngineAutomaticMetronome verifies the metronome runs during a timed,
// rep-targeted set and pauses during rest when automatic mode is on.
func TestEngineAutomaticMetronome(t *testing.T) {
	session := &models.TrainingSession{
		ID:   4,
		Date: models.NewDate(2026, 8, 20),
		Elements: []models.SessionElement{
			{Kind: models.ElementSet, ExerciseID: 1, TargetReps: intPtr(10), TargetTime: intPtr(3)},
			{Kind: models.ElementRest, TargetTime: intPtr(30)},
		},
	}
	store := &fakeStore{}
	source := &fakeSource{session: session, names: benchNames()}
	e, _ := newTestEngine(source, store, &fakeNotifier{}, Settings{AutomaticMetronome: true})
	defer e.Teardown()

	ctx := context.Background()
	if err := e.Start(ctx, 4); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !e.metronome.IsActive() {
		t.Error("metronome idle during a timed rep set")
	}
	if e.metronome.Interval != 3 {
		t.Errorf("metronome interval = %d, want 3", e.metronome.Interval)
	}

	if err := e.Next(ctx); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if e.metronome.IsActive() {
		t.Error("metronome still running during rest")
	}
}
