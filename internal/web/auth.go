package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkorchagin/plume/internal/forms"
	"github.com/dkorchagin/plume/internal/models"
	"github.com/dkorchagin/plume/internal/storage"
)

const (
	sessionUserKey = "user_id"
	userContextKey = "current_user"
)

// withUser resolves the session's user id into a models.User for the rest of
// the request. A stale session (deleted user) is treated as anonymous.
func (h *Handler) withUser(c *gin.Context) {
	session := sessions.Default(c)
	if v := session.Get(sessionUserKey); v != nil {
		if id, ok := v.(uint); ok {
			if user, err := h.store.UserByID(id); err == nil {
				c.Set(userContextKey, user)
			}
		}
	}
	c.Next()
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// requireLogin redirects anonymous callers to the login page, carrying the
// requested URL so login can return them there.
func (h *Handler) requireLogin(c *gin.Context) {
	if currentUser(c) != nil {
		c.Next()
		return
	}
	next := url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, "/auth/login/?next="+next)
	c.Abort()
}

func (h *Handler) signupForm(c *gin.Context) {
	h.render(c, http.StatusOK, "signup.html", gin.H{"Errors": forms.Errors{}})
}

func (h *Handler) signup(c *gin.Context) {
	in := forms.SignupInput{
		Username: strings.TrimSpace(c.PostForm("username")),
		Password: c.PostForm("password"),
	}

	errs := in.Validate()
	if errs.Valid() {
		if _, err := h.store.UserByUsername(in.Username); err == nil {
			errs["username"] = "This username is already taken."
		} else if !errors.Is(err, storage.ErrNotFound) {
			h.serverError(c)
			return
		}
	}
	if !errs.Valid() {
		h.render(c, http.StatusOK, "signup.html", gin.H{
			"Errors":   errs,
			"Username": in.Username,
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(c)
		return
	}
	user := models.User{Username: in.Username, PasswordHash: string(hash)}
	if err := h.store.CreateUser(&user); err != nil {
		h.serverError(c)
		return
	}

	if err := h.startSession(c, &user); err != nil {
		h.serverError(c)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Errors": forms.Errors{},
		"Next":   c.Query("next"),
	})
}

func (h *Handler) login(c *gin.Context) {
	in := forms.LoginInput{
		Username: strings.TrimSpace(c.PostForm("username")),
		Password: c.PostForm("password"),
	}
	next := c.PostForm("next")

	errs := in.Validate()
	if errs.Valid() {
		user, err := h.store.UserByUsername(in.Username)
		if err == nil {
			err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password))
		}
		if err != nil {
			errs["username"] = "Unknown username or wrong password."
		} else {
			if err := h.startSession(c, user); err != nil {
				h.serverError(c)
				return
			}
			c.Redirect(http.StatusFound, safeNext(next))
			return
		}
	}

	h.render(c, http.StatusOK, "login.html", gin.H{
		"Errors":   errs,
		"Username": in.Username,
		"Next":     next,
	})
}

func (h *Handler) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.serverError(c)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) startSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	return session.Save()
}

// safeNext keeps the post-login redirect inside this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
