package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/medisafe/internal/model"
	"github.com/iliyamo/medisafe/internal/repository"
	"github.com/iliyamo/medisafe/internal/utils"
	"github.com/iliyamo/medisafe/internal/validation"
)

// UserStore is the credential store the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	TouchUpdatedAt(ctx context.Context, id int64, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string, at time.Time) error
}

// AuthConfig holds the token and hashing settings.
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username string  `json:"username" validate:"required,min=3,max=50,username"`
	Password string  `json:"password" validate:"required,min=6,max=72,strongpassword"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService registers users, checks credentials and issues and verifies
// bearer tokens.
type AuthService struct {
	base
	users     UserStore
	cfg       AuthConfig
	log       logrus.FieldLogger
	dummyHash string
}

// NewAuthService builds the service.  A dummy hash at the configured cost is
// prepared so that logins for unknown users take as long as real ones.
func NewAuthService(users UserStore, cfg AuthConfig, v *validation.Validator, log logrus.FieldLogger, opts ...Option) (*AuthService, error) {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.Secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	dummy, err := utils.HashPassword("not-a-real-password", cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		base:      newBase(v, opts),
		users:     users,
		cfg:       cfg,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Register validates in, stores a new user and returns it with a fresh
// token.  A taken username yields ErrUserExists, including when two
// registrations race: the unique index decides.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, utils.AccessToken, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = optional(in.Email)
	if err := s.validate.Validate(in); err != nil {
		return model.User{}, utils.AccessToken{}, err
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, utils.AccessToken{}, err
	}

	now := s.now()
	u := model.User{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()
	if _, err := s.users.Create(cctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, utils.AccessToken{}, ErrUserExists
		}
		return model.User{}, utils.AccessToken{}, storeErr("create user", err)
	}

	tok, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.Username, s.cfg.TokenTTL, now)
	if err != nil {
		return model.User{}, utils.AccessToken{}, err
	}
	return u, tok, nil
}

// Login checks the credentials and returns the user with a fresh token.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (model.User, utils.AccessToken, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validate.Validate(in); err != nil {
		return model.User{}, utils.AccessToken{}, err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	u, err := s.users.GetByUsername(cctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.VerifyPassword(s.dummyHash, in.Password)
			return model.User{}, utils.AccessToken{}, ErrInvalidCredentials
		}
		return model.User{}, utils.AccessToken{}, storeErr("get user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return model.User{}, utils.AccessToken{}, ErrInvalidCredentials
	}

	now := s.now()
	if utils.NeedsRehash(u.PasswordHash, s.cfg.BcryptCost) {
		if hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost); err == nil {
			if err := s.users.UpdatePasswordHash(cctx, u.ID, hash, now); err != nil {
				s.log.WithError(err).WithField("user_id", u.ID).Warn("rehash password")
			}
		}
	}
	if err := s.users.TouchUpdatedAt(cctx, u.ID, now); err != nil {
		return model.User{}, utils.AccessToken{}, storeErr("touch user", err)
	}
	u.UpdatedAt = now

	tok, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.Username, s.cfg.TokenTTL, now)
	if err != nil {
		return model.User{}, utils.AccessToken{}, err
	}
	return u, tok, nil
}

// Verify checks a raw bearer token.  It is a pure function of signature and
// expiry: ErrMissingToken for an empty token, ErrTokenExpired once exp has
// passed and ErrTokenInvalid for everything else.
func (s *AuthService) Verify(raw string) (utils.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return utils.Claims{}, ErrMissingToken
	}
	return utils.ParseToken(s.cfg.Secret, raw, s.clock())
}

// OptionalVerify is Verify for endpoints that work with or without a caller.
func (s *AuthService) OptionalVerify(raw string) (utils.Claims, bool) {
	c, err := s.Verify(raw)
	return c, err == nil
}

// Profile returns the caller's account.
func (s *AuthService) Profile(ctx context.Context, userID int64) (model.User, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	u, err := s.users.GetByID(cctx, userID)
	if err != nil {
		return model.User{}, storeErr("get user", err)
	}
	return u, nil
}
