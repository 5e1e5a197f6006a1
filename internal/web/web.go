// Package web wires the HTTP surface: routing, session auth, template
// rendering and the request handlers.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/dkorchagin/plume/internal/cache"
	"github.com/dkorchagin/plume/internal/storage"
	"github.com/dkorchagin/plume/internal/uploads"
)

// Handler serves the blog's HTML pages.
type Handler struct {
	store    storage.Storage
	uploads  *uploads.Store
	pages    *cache.PageCache
	pageSize int
	tmpl     *template.Template
}

// Options collects the collaborators a Handler needs.
type Options struct {
	Store        storage.Storage
	Uploads      *uploads.Store
	PageSize     int
	IndexCache   *cache.PageCache
	TemplateGlob string
	Secret       string
}

// New builds the gin engine with all routes registered.
func New(opts Options) (*gin.Engine, *Handler, error) {
	glob := opts.TemplateGlob
	if glob == "" {
		glob = "web/templates/*.html"
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"humantime": HumanTime,
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
	}).ParseGlob(glob)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if opts.PageSize < 1 {
		opts.PageSize = defaultPageSize
	}

	h := &Handler{
		store:    opts.Store,
		uploads:  opts.Uploads,
		pages:    opts.IndexCache,
		pageSize: opts.PageSize,
		tmpl:     tmpl,
	}

	router := gin.New()
	router.Use(gin.Logger(), h.recovery())
	router.Use(sessions.Sessions("plume_session", cookie.NewStore([]byte(opts.Secret))))
	router.Use(h.withUser)

	router.GET("/", h.index)
	router.GET("/group/:slug/", h.groupPosts)
	router.GET("/follow/", h.requireLogin, h.followIndex)
	router.GET("/new/", h.requireLogin, h.newPostForm)
	router.POST("/new/", h.requireLogin, h.newPost)

	router.GET("/auth/signup/", h.signupForm)
	router.POST("/auth/signup/", h.signup)
	router.GET("/auth/login/", h.loginForm)
	router.POST("/auth/login/", h.login)
	router.GET("/auth/logout/", h.requireLogin, h.logout)

	router.GET("/:username/", h.profile)
	router.GET("/:username/follow/", h.requireLogin, h.profileFollow)
	router.GET("/:username/unfollow/", h.requireLogin, h.profileUnfollow)
	router.GET("/:username/:post_id/", h.postView)
	router.GET("/:username/:post_id/edit/", h.requireLogin, h.postEditForm)
	router.POST("/:username/:post_id/edit/", h.requireLogin, h.postEdit)
	router.POST("/:username/:post_id/comment/", h.requireLogin, h.addComment)

	if opts.Uploads != nil {
		router.Static("/media", opts.Uploads.Dir())
	}

	router.NoRoute(h.notFound)

	return router, h, nil
}

// render executes a template into a buffer first so a half-written body is
// never sent, then writes it with the given status.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	body, err := h.renderBytes(c, name, data)
	if err != nil {
		log.Printf("web: render %s: %v", name, err)
		h.serverError(c)
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

func (h *Handler) renderBytes(c *gin.Context, name string, data gin.H) ([]byte, error) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = currentUser(c)

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", gin.H{"Path": c.Request.URL.Path})
}

func (h *Handler) serverError(c *gin.Context) {
	// The 500 page is rendered without the shared helper to avoid
	// recursing if the error page itself fails.
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "500.html", gin.H{}); err != nil {
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		log.Printf("web: panic recovered: %v", err)
		h.serverError(c)
		c.Abort()
	})
}

// HumanTime formats a timestamp the way the feed displays it.
func HumanTime(t time.Time) string {
	duration := time.Since(t)
	switch {
	case duration.Hours() >= 48:
		return t.Format("Jan 2, 2006")
	case duration.Hours() >= 2:
		return fmt.Sprintf("%d hours ago", int(duration.Hours()))
	case duration.Hours() >= 1:
		return "an hour ago"
	case duration.Minutes() >= 2:
		return fmt.Sprintf("%d minutes ago", int(duration.Minutes()))
	case duration.Minutes() >= 1:
		return "a minute ago"
	case duration.Seconds() >= 5:
		return fmt.Sprintf("%d seconds ago", int(duration.Seconds()))
	}
	return "just now"
}

const defaultPageSize = 10
