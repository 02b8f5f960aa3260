// Package service holds the auth and record services.  Services validate
// input, scope every store call to the owning user and translate store
// errors into the sentinels in errors.go.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/medisafe/internal/validation"
)

const defaultTimeout = 5 * time.Second

// base carries what every service needs: a validator, a store timeout and a
// clock.
type base struct {
	validate *validation.Validator
	timeout  time.Duration
	clock    func() time.Time
}

// Option configures a service.
type Option func(*base)

// WithTimeout bounds every store call.
func WithTimeout(d time.Duration) Option {
	return func(b *base) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.clock = now
		}
	}
}

func newBase(v *validation.Validator, opts []Option) base {
	if v == nil {
		v = validation.New()
	}
	b := base{validate: v, timeout: defaultTimeout, clock: time.Now}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// now is the clock in UTC at second precision, the resolution every backend
// stores.
func (b base) now() time.Time {
	return b.clock().UTC().Truncate(time.Second)
}

func (b base) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, b.timeout)
}

// optional trims p and turns a blank value into nil.
func optional(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}
