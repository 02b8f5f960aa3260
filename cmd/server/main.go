package main // Entry point package

import (
	"context"   // Root context for background workers
	"errors"    // Distinguishes a clean server close
	"net/http"  // http.ErrServerClosed
	"os"        // Exit codes
	"os/signal" // SIGINT/SIGTERM handling
	"syscall"   // SIGTERM
	"time"      // Shutdown deadline

	"github.com/sirupsen/logrus" // Structured logging

	"github.com/iliyamo/medisafe/internal/config"     // Internal config loader
	"github.com/iliyamo/medisafe/internal/database"   // Connection pool and migrations
	"github.com/iliyamo/medisafe/internal/handler"    // HTTP handlers
	"github.com/iliyamo/medisafe/internal/logging"    // Logger construction
	"github.com/iliyamo/medisafe/internal/queue"      // RabbitMQ publisher and consumer
	"github.com/iliyamo/medisafe/internal/reminder"   // Reminder poller
	"github.com/iliyamo/medisafe/internal/repository" // SQL stores
	"github.com/iliyamo/medisafe/internal/router"     // Internal router setup
	"github.com/iliyamo/medisafe/internal/service"    // Business logic
	"github.com/iliyamo/medisafe/internal/validation" // Request validation
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.SecretGenerated {
		log.Warn("JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg) // Connect to the configured backend
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := database.Migrate(ctx, db) // Bring the schema up to date
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"driver": db.Dialect, "applied": n}).Info("database ready")

	// Stores
	users := repository.NewUserRepo(db)
	meds := repository.NewMedicationRepo(db)
	reminders := repository.NewReminderRepo(db)
	goals := repository.NewGoalRepo(db)

	// Services
	v := validation.New()
	timeout := service.WithTimeout(cfg.DBTimeout)
	authSvc, err := service.NewAuthService(users, service.AuthConfig{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}, v, log, timeout)
	if err != nil {
		return err
	}
	medSvc := service.NewMedicationService(meds, v, timeout)
	remSvc := service.NewReminderService(reminders, meds, v, cfg.Reminder.Location, cfg.Reminder.Snooze, timeout)
	goalSvc := service.NewGoalService(goals, v, timeout)

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	if rdb == nil {
		log.Warn("redis unavailable; in-process rate limiting, response cache off")
	} else {
		defer rdb.Close()
	}

	// Notifications go to RabbitMQ when a broker is configured, else to the log.
	var notifier reminder.Notifier = reminder.LogNotifier{Log: log}
	if cfg.RabbitMQURL != "" {
		pub := queue.NewPublisher(cfg.RabbitMQURL, log)
		defer pub.Close()
		notifier = pub
		if cfg.ConsumerEnabled {
			go func() {
				if err := queue.StartReminderConsumer(ctx, cfg.RabbitMQURL, cfg.ReminderLogDir, log); err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("reminder consumer stopped")
				}
			}()
		}
	}

	poller := reminder.NewPoller(reminders, notifier, log, reminder.Config{
		Interval: cfg.Reminder.Interval,
		Cooldown: cfg.Reminder.Cooldown,
		Timeout:  cfg.DBTimeout,
		Location: cfg.Reminder.Location,
	})
	if cfg.Reminder.Enabled {
		poller.Start(ctx)
		defer poller.Stop()
	}

	e := router.New(router.Deps{
		Config:      cfg,
		RateLimit:   config.LoadRateLimitConfig(),
		Cache:       config.LoadCacheConfig(),
		Redis:       rdb,
		Log:         log,
		Validator:   v,
		Verifier:    authSvc,
		Health:      &handler.HealthHandler{DB: db},
		Auth:        handler.NewAuthHandler(authSvc),
		Medications: handler.NewMedicationHandler(medSvc),
		Reminders:   handler.NewReminderHandler(remSvc),
		Goals:       handler.NewGoalHandler(goalSvc),
	})

	addr := ":" + cfg.Port // Address string with port
	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(sctx)
}
