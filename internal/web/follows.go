package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkorchagin/plume/internal/pagination"
)

// followIndex renders the feed of posts by authors the caller follows.
func (h *Handler) followIndex(c *gin.Context) {
	user := currentUser(c)

	posts, err := h.store.PostsByFollowed(user.ID)
	if err != nil {
		h.serverError(c)
		return
	}

	h.render(c, http.StatusOK, "follow.html", gin.H{
		"Page": pagination.Paginate(posts, h.pageSize, parsePage(c)),
	})
}

// profileFollow subscribes the caller to an author. Following yourself is a
// silent no-op.
func (h *Handler) profileFollow(c *gin.Context) {
	author, err := h.store.UserByUsername(c.Param("username"))
	if err != nil {
		h.lookupError(c, err)
		return
	}

	user := currentUser(c)
	if user.ID != author.ID {
		if _, err := h.store.GetOrCreateFollow(user.ID, author.ID); err != nil {
			h.serverError(c)
			return
		}
	}

	c.Redirect(http.StatusFound, "/"+author.Username+"/")
}

// profileUnfollow removes the caller's follow edge; missing edges are a 404.
func (h *Handler) profileUnfollow(c *gin.Context) {
	author, err := h.store.UserByUsername(c.Param("username"))
	if err != nil {
		h.lookupError(c, err)
		return
	}

	user := currentUser(c)
	if err := h.store.DeleteFollow(user.ID, author.ID); err != nil {
		h.lookupError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/"+author.Username+"/")
}
