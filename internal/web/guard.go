package web

import "net/http"

// Decision is what a pipeline stage tells the dispatcher.
type Decision int

const (
	// Continue passes the request to the next stage.
	Continue Decision = iota
	// Stop ends the request; the stage has written the response.
	Stop
)

// Guard is an access check. A guard that returns Stop must have written a
// response; one that returns Continue must not have.
type Guard func(c *Context) Decision

// RequireAuth passes signed-in users and sends everyone else to the login form.
func RequireAuth(c *Context) Decision {
	if !c.SignedIn() {
		c.Redirect("/login/")
		return Stop
	}
	return Continue
}

// RequireUnauth keeps signed-in users off the signup and login forms.
func RequireUnauth(c *Context) Decision {
	if c.SignedIn() {
		c.Redirect("/")
		return Stop
	}
	return Continue
}

// RequireOwn passes only the author of c.Post. It answers 403 rather than
// redirecting: the post exists, it just isn't the caller's.
//
// Routes using it must resolve the post first. Without one the request is
// refused.
func RequireOwn(c *Context) Decision {
	uid, ok := c.UserID()
	if !ok || c.Post == nil || c.Post.AuthorID != uid {
		c.RenderError(http.StatusForbidden)
		return Stop
	}
	return Continue
}
