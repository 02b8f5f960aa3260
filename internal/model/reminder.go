package model

import (
    "sort"
    "strconv"
    "strings"
    "time"
)

// Reminder schedules a medication on a set of weekdays at a fixed time of
// day.  Weekdays use time.Weekday numbering: 0 = Sunday .. 6 = Saturday.
// A one-off reminder is simply a single-day set.
//
// MedicationName and MedicationDose are joined from the medication on read
// and ignored on write.
type Reminder struct {
    ID             int64      `json:"id"`
    UserID         int64      `json:"user_id"`
    MedicationID   int64      `json:"medication_id"`
    MedicationName string     `json:"medication_name"`
    MedicationDose string     `json:"medication_dose"`
    ReminderTime   string     `json:"reminder_time"`
    DaysOfWeek     []int      `json:"days_of_week"`
    IsActive       bool       `json:"is_active"`
    LastTakenAt    *time.Time `json:"last_taken_at"`
    SnoozedUntil   *time.Time `json:"snoozed_until"`
    CreatedAt      time.Time  `json:"created_at"`
    UpdatedAt      time.Time  `json:"updated_at"`
}

// ScheduledOn reports whether the reminder fires on weekday d.
func (r Reminder) ScheduledOn(d time.Weekday) bool {
    for _, day := range r.DaysOfWeek {
        if day == int(d) {
            return true
        }
    }
    return false
}

// ClockMinutes parses ReminderTime ("HH:MM") into minutes after midnight.
func (r Reminder) ClockMinutes() (int, bool) {
    return ParseClock(r.ReminderTime)
}

// ParseClock parses a 24h "HH:MM" value into minutes after midnight.
func ParseClock(s string) (int, bool) {
    t, err := time.Parse("15:04", strings.TrimSpace(s))
    if err != nil {
        return 0, false
    }
    return t.Hour()*60 + t.Minute(), true
}

// FormatDays encodes a weekday set for storage ("1,3,5"), sorted and
// de-duplicated.
func FormatDays(days []int) string {
    seen := make(map[int]bool, len(days))
    uniq := make([]int, 0, len(days))
    for _, d := range days {
        if !seen[d] {
            seen[d] = true
            uniq = append(uniq, d)
        }
    }
    sort.Ints(uniq)
    parts := make([]string, len(uniq))
    for i, d := range uniq {
        parts[i] = strconv.Itoa(d)
    }
    return strings.Join(parts, ",")
}

// ParseDays decodes a stored weekday set.  Unparseable entries are skipped.
func ParseDays(s string) []int {
    out := []int{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(p)
        if p == "" {
            continue
        }
        if n, err := strconv.Atoi(p); err == nil {
            out = append(out, n)
        }
    }
    return out
}
