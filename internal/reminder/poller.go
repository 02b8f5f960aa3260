package reminder

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/medisafe/internal/metrics"
	"github.com/iliyamo/medisafe/internal/model"
)

// Source lists the reminders to evaluate on each tick.
type Source interface {
	ListActive(ctx context.Context) ([]model.Reminder, error)
}

// Config tunes a Poller.  Zero values take the defaults.
type Config struct {
	Interval time.Duration // default 1m
	Cooldown time.Duration // default 5m
	Timeout  time.Duration // per pass store timeout, default 5s
	Location *time.Location
	Now      func() time.Time
}

// Poller evaluates active reminders at a fixed interval and notifies on
// those that are due or late.  One loop runs at a time.
type Poller struct {
	src      Source
	notifier Notifier
	log      logrus.FieldLogger
	eval     Evaluator
	interval time.Duration
	cooldown time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	sentMu   sync.Mutex
	lastSent map[string]time.Time
}

// NewPoller wires a poller.  It does not start it.
func NewPoller(src Source, n Notifier, log logrus.FieldLogger, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Poller{
		src:      src,
		notifier: n,
		log:      log,
		eval:     Evaluator{Location: cfg.Location},
		interval: cfg.Interval,
		cooldown: cfg.Cooldown,
		timeout:  cfg.Timeout,
		now:      cfg.Now,
		lastSent: make(map[string]time.Time),
	}
}

// Start runs one pass immediately and then one per interval until ctx is
// cancelled or Stop is called.  Calling Start while a loop is running stops
// that loop first, so at most one loop ever runs.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	go p.loop(ctx, done)
}

// Stop halts the loop and waits for it to exit.  It is safe to call when
// nothing is running.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Running reports whether a loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel, p.done = nil, nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.CheckOnce(ctx)

	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.CheckOnce(ctx)
		}
	}
}

// CheckOnce evaluates every active reminder and returns how many
// notifications were delivered.
func (p *Poller) CheckOnce(ctx context.Context) int {
	start := time.Now()
	defer func() { metrics.RecordPoll(time.Since(start)) }()

	lctx, cancel := context.WithTimeout(ctx, p.timeout)
	reminders, err := p.src.ListActive(lctx)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			p.log.WithError(err).Warn("reminder poll: list active reminders")
		}
		return 0
	}

	now := p.now()
	p.pruneSent(now)

	sent := 0
	for _, r := range reminders {
		if ctx.Err() != nil {
			return sent
		}
		ev := p.eval.Evaluate(r, now)
		if !ev.State.Notifies() {
			continue
		}
		key := cooldownKey(r)
		if !p.claim(key, now) {
			continue
		}
		err := p.notifier.Notify(ctx, NewNotification(r, ev, now))
		metrics.RecordNotification(ev.State.String(), err)
		if err != nil {
			p.release(key)
			p.log.WithError(err).WithField("reminder_id", r.ID).Warn("reminder poll: notify")
			continue
		}
		sent++
	}
	return sent
}

// cooldownKey identifies a reminder slot.  Changing the time of a reminder
// starts a fresh cooldown.
func cooldownKey(r model.Reminder) string {
	return strconv.FormatInt(r.ID, 10) + "-" + r.ReminderTime
}

// claim records a send for key unless one happened within the cooldown.
func (p *Poller) claim(key string, now time.Time) bool {
	p.sentMu.Lock()
	defer p.sentMu.Unlock()
	if last, ok := p.lastSent[key]; ok && now.Sub(last) < p.cooldown {
		return false
	}
	p.lastSent[key] = now
	return true
}

func (p *Poller) release(key string) {
	p.sentMu.Lock()
	delete(p.lastSent, key)
	p.sentMu.Unlock()
}

func (p *Poller) pruneSent(now time.Time) {
	p.sentMu.Lock()
	defer p.sentMu.Unlock()
	for k, at := range p.lastSent {
		if now.Sub(at) >= p.cooldown {
			delete(p.lastSent, k)
		}
	}
}
