package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/medisafe/internal/database"
	"github.com/iliyamo/medisafe/internal/logging"
	"github.com/iliyamo/medisafe/internal/repository"
	"github.com/iliyamo/medisafe/internal/service"
	"github.com/iliyamo/medisafe/internal/testutil"
	"github.com/iliyamo/medisafe/internal/validation"
)

const secret = "test-secret-test-secret-test-secret"

// Monday 2024-03-11 08:00 UTC
var start = time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)

type env struct {
	db          *database.DB
	clock       *testutil.Clock
	users       *repository.UserRepo
	auth        *service.AuthService
	medications *service.MedicationService
	reminders   *service.ReminderService
	goals       *service.GoalService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.OpenDB(t)
	clock := &testutil.Clock{T: start}
	v := validation.New()
	opts := []service.Option{service.WithClock(clock.Now), service.WithTimeout(time.Second)}

	users := repository.NewUserRepo(db)
	meds := repository.NewMedicationRepo(db)
	auth, err := service.NewAuthService(users, service.AuthConfig{
		Secret: secret, TokenTTL: 24 * time.Hour, BcryptCost: bcrypt.MinCost,
	}, v, logging.Discard(), opts...)
	require.NoError(t, err)

	return &env{
		db:          db,
		clock:       clock,
		users:       users,
		auth:        auth,
		medications: service.NewMedicationService(meds, v, opts...),
		reminders:   service.NewReminderService(repository.NewReminderRepo(db), meds, v, time.UTC, 10*time.Minute, opts...),
		goals:       service.NewGoalService(repository.NewGoalRepo(db), v, opts...),
	}
}

// register creates a user and returns its id.
func (e *env) register(t *testing.T, name string) int64 {
	t.Helper()
	u, _, err := e.auth.Register(context.Background(), service.RegisterInput{Username: name, Password: "Passw0rd"})
	require.NoError(t, err)
	return u.ID
}

func strp(s string) *string { return &s }
