// Package guide walks a training session's form sections at the right
// wall-clock moments: it owns the countdown timer for the current section,
// drives the metronome for timed sets, shows section notifications, and
// keeps the ongoing-session record in the store in sync so an interrupted
// session resumes from exactly where it was.
package guide

import (
	"context"
	"log/slog"

	"github.com/Ranveer112/valens/internal/forms"
	"github.com/Ranveer112/valens/internal/models"
)

// SessionStore is the engine's persistence boundary for the one globally
// ongoing session and for saving recorded set data.
type SessionStore interface {
	// StartSession records that a guide began for the given session.
	StartSession(ctx context.Context, sessionID uint32, rec models.OngoingSession) error
	// UpdateSession pushes the current transition triple. Called after every
	// local state mutation and before any derived notification.
	UpdateSession(ctx context.Context, rec models.OngoingSession) error
	// EndSession clears the ongoing-session record.
	EndSession(ctx context.Context) error
	// OngoingSession returns the persisted record, or nil when none exists.
	OngoingSession(ctx context.Context) (*models.OngoingSession, error)
	// ModifySession saves edited notes and elements for a session.
	ModifySession(ctx context.Context, sessionID uint32, notes *string, elements []models.SessionElement) error
}

// FormSource rebuilds the editable form from stored data.
type FormSource interface {
	SessionForm(ctx context.Context, sessionID uint32) (forms.Form, error)
}

// Notifier shows the current section to the user. Show replaces any
// previously shown notification.
type Notifier interface {
	Show(title, body string)
	Dismiss()
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Show(title, body string) {}
func (NopNotifier) Dismiss()                {}

// LogNotifier writes notifications to the log, for headless deployments
// without a notification backend.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Show(title, body string) {
	n.Log.Info("section notification", "title", title, "body", body)
}

func (n LogNotifier) Dismiss() {}
