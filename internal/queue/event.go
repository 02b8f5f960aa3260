// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/medisafe/internal/reminder"
)

// ReminderQueueName is the durable queue reminder notifications travel on.
const ReminderQueueName = "reminder.notifications"

// ReminderNotificationEvent is published when the poller finds a reminder
// that is due or late.  It carries enough for a consumer to log or forward
// the notification without querying the primary database.
type ReminderNotificationEvent struct {
    ReminderID     int64  `json:"reminder_id"`
    UserID         int64  `json:"user_id"`
    MedicationID   int64  `json:"medication_id"`
    MedicationName string `json:"medication_name"`
    MedicationDose string `json:"medication_dose"`
    ReminderTime   string `json:"reminder_time"`
    State          string `json:"state"`
    LateMinutes    int    `json:"late_minutes"`
    Title          string `json:"title"`
    Message        string `json:"message"`
    NotifiedAt     string `json:"notified_at"` // RFC3339, UTC
}

// EventFromNotification converts a poller notification to its wire form.
func EventFromNotification(n reminder.Notification) ReminderNotificationEvent {
    return ReminderNotificationEvent{
        ReminderID:     n.ReminderID,
        UserID:         n.UserID,
        MedicationID:   n.MedicationID,
        MedicationName: n.MedicationName,
        MedicationDose: n.MedicationDose,
        ReminderTime:   n.ReminderTime,
        State:          n.State,
        LateMinutes:    n.LateMinutes,
        Title:          n.Title,
        Message:        n.Message,
        NotifiedAt:     n.At.UTC().Format(time.RFC3339),
    }
}
