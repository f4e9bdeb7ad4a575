// Package auth provides password hashing and the signed session cookie.
//
// SESSION MODEL:
// There is no server-side session table. The whole session bag (today only
// the optional user id) travels in a cookie as an HS256-signed JWT:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Payload: {"uid":42,"jti":"cv37rs3pp9olc6atsptg","iat":...,"exp":...,"iss":"markdown-blog"}
//
// The signature makes the cookie tamper-evident; the application never trusts
// a payload whose signature, issuer, algorithm or expiry does not check out.
// A stolen cookie stays valid until it expires: there is no revocation list.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	sessionIssuer = "markdown-blog"

	// DefaultSessionMaxAge matches a one day cookie lifetime.
	DefaultSessionMaxAge = 24 * time.Hour
)

// Session is the per-request session bag. A zero Session is anonymous.
//
// It is created by the session middleware from the verified cookie, threaded
// through guards and handlers via web.Context, and written back to the cookie
// only when it was modified.
type Session struct {
	userID        int64
	authenticated bool
	tokenID       string
	modified      bool
}

// NewSession returns an anonymous, unmodified session.
func NewSession() *Session {
	return &Session{}
}

// UserID returns the signed-in user's id, and false for anonymous sessions.
func (s *Session) UserID() (int64, bool) {
	return s.userID, s.authenticated
}

// SetUserID marks the session as authenticated as id. This is the only way a
// client becomes signed in.
func (s *Session) SetUserID(id int64) {
	s.userID = id
	s.authenticated = true
	s.tokenID = ""
	s.modified = true
}

// Clear drops the user id. This is the only sign-out mechanism.
func (s *Session) Clear() {
	s.userID = 0
	s.authenticated = false
	s.tokenID = ""
	s.modified = true
}

// Modified reports whether the session must be written back to the client.
func (s *Session) Modified() bool {
	return s.modified
}

// TokenID is the jti of the token this session was decoded from or last
// encoded into. Empty for fresh sessions.
func (s *Session) TokenID() string {
	return s.tokenID
}

// SessionCodec signs sessions into cookie values and verifies them back.
//
// It holds the HMAC secret; the same secret must be used for both operations.
type SessionCodec struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSessionCodec creates a codec with the given secret and lifetime.
// The secret should be at least 32 bytes of random data in production.
func NewSessionCodec(secret string, maxAge time.Duration) (*SessionCodec, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	return &SessionCodec{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

// MaxAge is the lifetime of encoded sessions and of the cookie carrying them.
func (c *SessionCodec) MaxAge() time.Duration {
	return c.maxAge
}

// sessionClaims is the JWT payload. UserID is absent for anonymous sessions.
type sessionClaims struct {
	UserID *int64 `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Encode signs s into a token. A fresh jti is assigned on every call and
// recorded on the session.
func (c *SessionCodec) Encode(s *Session) (string, error) {
	now := c.now()

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	}
	if id, ok := s.UserID(); ok {
		claims.UserID = &id
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session: %w", err)
	}

	s.tokenID = claims.ID
	return signed, nil
}

// Decode verifies a token and returns the unmodified session it carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Algorithm is HS256 (prevents "none"/algorithm confusion attacks)
//   - Issuer matches
//   - Token is not expired
func (c *SessionCodec) Decode(tokenStr string) (*Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: session expired")
		}
		return nil, fmt.Errorf("auth: invalid session: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid session claims")
	}

	s := &Session{tokenID: claims.ID}
	if claims.UserID != nil {
		s.userID = *claims.UserID
		s.authenticated = true
	}
	return s, nil
}
