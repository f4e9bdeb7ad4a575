package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/markdown-blog/internal/view"
	"github.com/sakif/markdown-blog/internal/web"
)

// AuthHandler serves signup, login and logout.
type AuthHandler struct {
	accounts Accounts
	logger   *slog.Logger
}

func NewAuthHandler(accounts Accounts, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// SignupForm handles GET /signup/.
func (h *AuthHandler) SignupForm(c *web.Context) error {
	return c.Render(http.StatusOK, view.Signup.With(view.AuthFormData{}))
}

// Signup handles POST /signup/. A new account is signed in straight away.
func (h *AuthHandler) Signup(c *web.Context) error {
	username := c.R.PostFormValue("username")
	password := c.R.PostFormValue("password")

	user, err := h.accounts.Signup(c.R.Context(), username, password)
	if err != nil {
		msgs, ok := formErrors(err)
		if !ok {
			return err
		}
		return c.Render(http.StatusBadRequest, view.Signup.With(view.AuthFormData{
			Errors:   msgs,
			Username: username,
		}))
	}

	c.Session.SetUserID(user.ID)
	c.Redirect("/")
	return nil
}

// LoginForm handles GET /login/.
func (h *AuthHandler) LoginForm(c *web.Context) error {
	return c.Render(http.StatusOK, view.Login.With(view.AuthFormData{}))
}

// Login handles POST /login/.
func (h *AuthHandler) Login(c *web.Context) error {
	username := c.R.PostFormValue("username")
	password := c.R.PostFormValue("password")

	user, err := h.accounts.Login(c.R.Context(), username, password)
	if err != nil {
		msgs, ok := formErrors(err)
		if !ok {
			return err
		}
		return c.Render(http.StatusBadRequest, view.Login.With(view.AuthFormData{
			Errors:   msgs,
			Username: username,
		}))
	}

	c.Session.SetUserID(user.ID)
	c.Redirect("/")
	return nil
}

// Logout handles POST /logout/.
func (h *AuthHandler) Logout(c *web.Context) error {
	if uid, ok := c.UserID(); ok {
		c.Logger().Info("user logged out",
			slog.Int64("user_id", uid),
			slog.String("session_id", c.Session.TokenID()),
		)
	}
	c.Session.Clear()
	c.Redirect("/")
	return nil
}
