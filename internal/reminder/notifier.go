package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/medisafe/internal/model"
)

// Notification is emitted for a reminder in a notifying state.
type Notification struct {
	ReminderID     int64     `json:"reminder_id"`
	UserID         int64     `json:"user_id"`
	MedicationID   int64     `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	MedicationDose string    `json:"medication_dose"`
	ReminderTime   string    `json:"reminder_time"`
	State          string    `json:"state"`
	LateMinutes    int       `json:"late_minutes"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	At             time.Time `json:"at"`
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NewNotification builds the user-facing text for r in state ev.
func NewNotification(r model.Reminder, ev Evaluation, at time.Time) Notification {
	n := Notification{
		ReminderID:     r.ID,
		UserID:         r.UserID,
		MedicationID:   r.MedicationID,
		MedicationName: r.MedicationName,
		MedicationDose: r.MedicationDose,
		ReminderTime:   r.ReminderTime,
		State:          ev.State.String(),
		LateMinutes:    ev.LateMinutes,
		At:             at.UTC(),
	}
	switch ev.State {
	case Due:
		n.Title = "Time to take your medication"
		n.Message = fmt.Sprintf("It is time to take %s (%s)", r.MedicationName, r.MedicationDose)
	case Overdue:
		n.Title = "Medication overdue"
		n.Message = fmt.Sprintf("You are %d minutes late for %s (%s)", ev.LateMinutes, r.MedicationName, r.MedicationDose)
	case VeryOverdue:
		n.Title = "Medication very overdue"
		n.Message = fmt.Sprintf("%s (%s) was due at %s and has not been taken", r.MedicationName, r.MedicationDose, r.ReminderTime)
	}
	return n
}

// LogNotifier writes notifications to a logrus logger.  It is the default
// when no broker is configured.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	l.Log.WithFields(logrus.Fields{
		"reminder_id": n.ReminderID,
		"user_id":     n.UserID,
		"medication":  n.MedicationName,
		"state":       n.State,
		"late_min":    n.LateMinutes,
	}).Info(n.Message)
	return nil
}
