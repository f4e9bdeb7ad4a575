package auth

import (
	"context"
	"log/slog"
	"net/http"
)

// SessionCookieName is the cookie carrying the signed session.
const SessionCookieName = "session"

// contextKey is an unexported type used for context keys in this package.
//
// context.WithValue uses any as the key type. A package-private type means
// only this package can read or write the session stored in the context.
type contextKey string

const sessionKey contextKey = "session"

// CookieOptions controls attributes of the session cookie.
type CookieOptions struct {
	// Secure restricts the cookie to HTTPS. Enable it in production.
	Secure bool
}

// Middleware decodes the session cookie into a *Session for every request and
// writes the session back when a handler modified it.
//
// A missing, tampered or expired cookie yields a fresh anonymous session; it
// is never an error for the request.
//
// Cookies must be set before the status line goes out, so the writer is
// wrapped: the first WriteHeader or Write commits the session.
func (c *SessionCodec) Middleware(opts CookieOptions, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := c.fromRequest(r, logger)

			sw := &sessionWriter{
				ResponseWriter: w,
				codec:          c,
				session:        sess,
				opts:           opts,
				logger:         logger,
			}

			next.ServeHTTP(sw, r.WithContext(WithSession(r.Context(), sess)))

			// Nothing was written (e.g. an empty 200): commit anyway.
			sw.commit()
		})
	}
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session installed by Middleware.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}

// fromRequest reads and verifies the session cookie.
func (c *SessionCodec) fromRequest(r *http.Request, logger *slog.Logger) *Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		// http.ErrNoCookie — anonymous, first contact
		return NewSession()
	}

	sess, err := c.Decode(cookie.Value)
	if err != nil {
		logger.Debug("ignoring session cookie", slog.String("error", err.Error()))
		return NewSession()
	}
	return sess
}

// sessionWriter hooks the moment headers are sent to commit the session.
type sessionWriter struct {
	http.ResponseWriter
	codec     *SessionCodec
	session   *Session
	opts      CookieOptions
	logger    *slog.Logger
	committed bool
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *sessionWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true

	if !w.session.Modified() {
		return
	}

	if _, ok := w.session.UserID(); !ok {
		// Signed out: delete the cookie rather than issuing an empty session.
		http.SetCookie(w.ResponseWriter, &http.Cookie{
			Name:     SessionCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   w.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		return
	}

	value, err := w.codec.Encode(w.session)
	if err != nil {
		// Headers are about to go out; the best we can do is log it.
		w.logger.Error("failed to encode session", slog.String("error", err.Error()))
		return
	}

	http.SetCookie(w.ResponseWriter, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(w.codec.MaxAge().Seconds()),
		HttpOnly: true,
		Secure:   w.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
