package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string  `json:"username" validate:"required,min=3,max=50,username"`
	Password string  `json:"password" validate:"required,min=6,max=72,strongpassword"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

type schedule struct {
	At   string  `json:"reminder_time" validate:"required,clock"`
	Days []int   `json:"days_of_week" validate:"required,min=1,max=7,dive,gte=0,lte=6"`
	Due  *string `json:"deadline" validate:"omitempty,isodate"`
	Name string  `json:"name" validate:"notblank"`
}

func fields(t *testing.T, err error) map[string]FieldError {
	t.Helper()
	var verr *Error
	require.True(t, errors.As(err, &verr), "want *Error, got %v", err)
	out := map[string]FieldError{}
	for _, f := range verr.Fields {
		out[f.Field] = f
	}
	return out
}

func TestValidate_OK(t *testing.T) {
	v := New()
	email := "alice@example.com"
	assert.NoError(t, v.Validate(&signup{Username: "alice_1", Password: "Passw0rd", Email: &email}))

	due := "2025-12-31"
	assert.NoError(t, v.Validate(&schedule{At: "23:59", Days: []int{0, 6}, Due: &due, Name: "x"}))
}

func TestValidate_ShortUsername(t *testing.T) {
	got := fields(t, New().Validate(&signup{Username: "ab", Password: "Passw0rd"}))
	require.Contains(t, got, "username")
	assert.Equal(t, "must be at least 3 characters", got["username"].Message)
	assert.Equal(t, "ab", got["username"].RejectedValue)
}

func TestValidate_ReportsEveryFieldAndHidesPasswords(t *testing.T) {
	bad := "nope"
	got := fields(t, New().Validate(&signup{Username: "bad name!", Password: "password", Email: &bad}))
	require.Len(t, got, 3)
	assert.Equal(t, "may contain only letters, numbers and underscores", got["username"].Message)
	assert.Equal(t, "must be a valid email address", got["email"].Message)
	assert.Contains(t, got["password"].Message, "uppercase")
	assert.Nil(t, got["password"].RejectedValue)
}

func TestValidate_EveryRulePerField(t *testing.T) {
	err := New().Validate(&signup{Username: "a!", Password: "abc"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 4)

	assert.Equal(t, FieldError{Field: "username", Message: "must be at least 3 characters", RejectedValue: "a!"}, verr.Fields[0])
	assert.Equal(t, FieldError{Field: "username", Message: "may contain only letters, numbers and underscores", RejectedValue: "a!"}, verr.Fields[1])
	assert.Equal(t, "password", verr.Fields[2].Field)
	assert.Equal(t, "must be at least 6 characters", verr.Fields[2].Message)
	assert.Equal(t, "password", verr.Fields[3].Field)
	assert.Contains(t, verr.Fields[3].Message, "uppercase")
	assert.Nil(t, verr.Fields[3].RejectedValue)
}

func TestValidate_RequiredStopsThere(t *testing.T) {
	err := New().Validate(&signup{Username: "", Password: "Passw0rd"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "is required", verr.Fields[0].Message)
}

func TestValidate_CustomTags(t *testing.T) {
	bad := "31/12/2025"
	got := fields(t, New().Validate(&schedule{At: "24:00", Days: []int{7}, Due: &bad, Name: "   "}))
	assert.Equal(t, "must be a time in HH:MM format", got["reminder_time"].Message)
	assert.Equal(t, "must be at most 6", got["days_of_week[0]"].Message)
	assert.Equal(t, "must be a date in YYYY-MM-DD format", got["deadline"].Message)
	assert.Equal(t, "is required", got["name"].Message)
}

func TestValidate_EmptyDays(t *testing.T) {
	got := fields(t, New().Validate(&schedule{At: "08:00", Days: []int{}, Name: "x"}))
	assert.Equal(t, "must contain at least 1 item(s)", got["days_of_week"].Message)
}

func TestNewError(t *testing.T) {
	err := NewError("medication_id", "must reference one of your medications", int64(9))
	assert.EqualError(t, err, "validation failed: medication_id: must reference one of your medications")
}
