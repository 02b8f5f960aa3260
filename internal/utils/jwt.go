package utils // package utils provides helper functions for token creation and hashing

import (
    "errors" // errors distinguishes expired tokens from other failures
    "strconv" // strconv renders the subject claim
    "time"    // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
    "github.com/google/uuid"       // uuid gives every token a unique jti
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are sent in the Authorization
// header when calling protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims is the payload of an access token.  UserID and Username are
// private claims; the registered claims carry sub, iat, exp and jti.
type Claims struct {
    UserID   int64  `json:"user_id"`
    Username string `json:"username"`
    jwt.RegisteredClaims
}

var (
    // ErrTokenExpired is returned by ParseToken when exp has passed.
    ErrTokenExpired = errors.New("token expired")
    // ErrTokenInvalid covers bad signatures, unexpected algorithms and
    // malformed tokens.
    ErrTokenInvalid = errors.New("token invalid")
)

// NewAccessToken builds and signs an HS256 JWT for a user.  The token is
// issued at now and expires after ttl.
func NewAccessToken(secret string, userID int64, username string, ttl time.Duration, now time.Time) (AccessToken, error) {
    iat := now.UTC().Truncate(time.Second)
    exp := iat.Add(ttl)
    claims := Claims{
        UserID:   userID,
        Username: username,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatInt(userID, 10),
            IssuedAt:  jwt.NewNumericDate(iat),
            ExpiresAt: jwt.NewNumericDate(exp),
            ID:        uuid.NewString(),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    // Sign the token with the provided secret and obtain the string form.
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies the signature and expiry of raw against secret, using
// now as the current time.  Only HMAC algorithms are accepted.
func ParseToken(secret, raw string, now time.Time) (Claims, error) {
    var claims Claims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        // Type assert the signing method to HMAC; reject others.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenInvalid
        }
        return []byte(secret), nil
    },
        jwt.WithTimeFunc(func() time.Time { return now }),
        jwt.WithExpirationRequired(),
    )
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return Claims{}, ErrTokenExpired
        }
        return Claims{}, ErrTokenInvalid
    }
    if !tok.Valid || claims.UserID <= 0 {
        return Claims{}, ErrTokenInvalid
    }
    return claims, nil
}
