package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionName        = "session"
	sessionKeyLoggedIn = "logged_in"
	sessionStateKey    = "session_state"
)

// SessionState is the per-request view of the login session.
type SessionState struct {
	LoggedIn bool
}

// SessionStateLoader reads the cookie session once and attaches a
// SessionState to the request. It must run after sessions.Sessions.
func SessionStateLoader() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		loggedIn, _ := session.Get(sessionKeyLoggedIn).(bool)
		c.Set(sessionStateKey, SessionState{LoggedIn: loggedIn})
		c.Next()
	}
}

func CurrentSession(c *gin.Context) SessionState {
	state, _ := c.Get(sessionStateKey)
	s, _ := state.(SessionState)
	return s
}

// RequireLogin aborts with 401 unless the session is logged in.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).LoggedIn {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// SetLoggedIn updates the stored session and the request's state, queueing
// flashes in the same write so the response carries a single cookie.
func SetLoggedIn(c *gin.Context, loggedIn bool, flashes ...string) error {
	session := sessions.Default(c)
	if loggedIn {
		session.Set(sessionKeyLoggedIn, true)
	} else {
		session.Delete(sessionKeyLoggedIn)
	}
	for _, message := range flashes {
		session.AddFlash(message)
	}
	c.Set(sessionStateKey, SessionState{LoggedIn: loggedIn})
	return session.Save()
}

// Flash queues a message for the next rendered page.
func Flash(c *gin.Context, message string) error {
	session := sessions.Default(c)
	session.AddFlash(message)
	return session.Save()
}

// TakeFlashes returns and clears the pending messages.
func TakeFlashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save()

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}
