package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/medisafe/internal/repository"
	"github.com/iliyamo/medisafe/internal/utils"
)

// Errors surfaced by the services.  The HTTP layer maps each to a status;
// validation failures are reported as *validation.Error.
var (
	ErrMissingToken       = errors.New("missing token")
	ErrTokenExpired       = utils.ErrTokenExpired
	ErrTokenInvalid       = utils.ErrTokenInvalid
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrNotFound           = errors.New("not found")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// storeErr translates a repository error.  ErrNotFound passes through as the
// service sentinel; anything unexpected is wrapped as ErrStoreUnavailable
// with the cause kept for server-side logs.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
}
