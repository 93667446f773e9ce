// Package token issues and validates the credentials used by the auth
// layer: HS256 access/refresh JWTs, bcrypt password hashes, and the
// state-bound password-reset tokens.
package token

import (
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// Validation failures.  Callers must treat both identically toward the
// client (authentication denied); the split exists for server-side logs.
var (
    ErrExpiredToken     = errors.New("token expired")
    ErrInvalidSignature = errors.New("invalid token signature")
)

const (
    typAccess  = "access"
    typRefresh = "refresh"
)

// Pair is an access/refresh token pair.  The two are always issued
// together.
type Pair struct {
    Access     string    // signed access JWT
    AccessExp  time.Time // UTC expiry of the access token
    Refresh    string    // signed refresh JWT
    RefreshExp time.Time // UTC expiry of the refresh token
}

// Service signs and verifies JWTs with a process-wide secret loaded once
// at startup.  Tokens are stateless: validity is signature plus expiry,
// nothing is persisted server-side.
type Service struct {
    secret     []byte
    accessTTL  time.Duration
    refreshTTL time.Duration
    now        func() time.Time // injectable for tests
}

// NewService builds a Service from the configured secret and TTLs
// (minutes for access tokens, days for refresh tokens).
func NewService(secret string, accessTTLMin, refreshTTLDays int) *Service {
    return &Service{
        secret:     []byte(secret),
        accessTTL:  time.Duration(accessTTLMin) * time.Minute,
        refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
        now:        time.Now,
    }
}

// IssuePair mints an access and a refresh token for the user.  Both embed
// the user id as subject, issued-at and expiry; a typ claim stops a
// refresh token from being replayed as an access token.
func (s *Service) IssuePair(userID uint64) (Pair, error) {
    now := s.now().UTC()
    access, accessExp, err := s.sign(userID, typAccess, now, s.accessTTL)
    if err != nil {
        return Pair{}, err
    }
    refresh, refreshExp, err := s.sign(userID, typRefresh, now, s.refreshTTL)
    if err != nil {
        return Pair{}, err
    }
    return Pair{Access: access, AccessExp: accessExp, Refresh: refresh, RefreshExp: refreshExp}, nil
}

// Validate verifies an access token and returns the bound user id.
func (s *Service) Validate(raw string) (uint64, error) {
    return s.parse(raw, typAccess)
}

// Refresh verifies a refresh token and mints a new access token for the
// same user.  The refresh token itself is not rotated.
func (s *Service) Refresh(raw string) (string, time.Time, error) {
    userID, err := s.parse(raw, typRefresh)
    if err != nil {
        return "", time.Time{}, err
    }
    return s.sign(userID, typAccess, s.now().UTC(), s.accessTTL)
}

// AccessTTL reports the configured access-token lifetime (used to size the
// access cookie's Max-Age).
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *Service) sign(userID uint64, typ string, now time.Time, ttl time.Duration) (string, time.Time, error) {
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub": userID,
        "typ": typ,
        "exp": exp.Unix(),
        "iat": now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString(s.secret)
    if err != nil {
        return "", time.Time{}, err
    }
    return signed, exp, nil
}

func (s *Service) parse(raw, wantTyp string) (uint64, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidSignature
        }
        return s.secret, nil
    }, jwt.WithTimeFunc(func() time.Time { return s.now() }))
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return 0, ErrExpiredToken
        }
        return 0, ErrInvalidSignature
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok || !tok.Valid {
        return 0, ErrInvalidSignature
    }
    if typ, _ := claims["typ"].(string); typ != wantTyp {
        return 0, ErrInvalidSignature
    }
    // Numeric JSON claims decode as float64; some encoders emit strings.
    switch sub := claims["sub"].(type) {
    case float64:
        return uint64(sub), nil
    case string:
        if id, err := strconv.ParseUint(sub, 10, 64); err == nil {
            return id, nil
        }
    }
    return 0, ErrInvalidSignature
}
