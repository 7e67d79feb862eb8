package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pipi/internal/middleware"
	"pipi/internal/web"
)

const (
	flashLoggedIn  = "You were logged in"
	flashLoggedOut = "You were logged out"
)

func (h HandlerSet) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, web.LoginTemplate, gin.H{"error": ""})
}

// Login checks the form against the configured account. A failed attempt
// re-renders the form with the reason.
func (h HandlerSet) Login(c *gin.Context) {
	if err := h.creds.Check(c.PostForm("username"), c.PostForm("password")); err != nil {
		c.HTML(http.StatusOK, web.LoginTemplate, gin.H{"error": err.Error()})
		return
	}

	if err := middleware.SetLoggedIn(c, true, flashLoggedIn); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("save session failed")
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.Redirect(http.StatusFound, "/sh")
}

func (h HandlerSet) Logout(c *gin.Context) {
	if err := middleware.SetLoggedIn(c, false, flashLoggedOut); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("save session failed")
	}

	c.Redirect(http.StatusFound, "/sh")
}

func (h HandlerSet) flash(c *gin.Context, message string) {
	if err := middleware.Flash(c, message); err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("store flash failed")
	}
}
