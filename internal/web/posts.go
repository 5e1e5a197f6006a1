package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkorchagin/plume/internal/forms"
	"github.com/dkorchagin/plume/internal/models"
	"github.com/dkorchagin/plume/internal/pagination"
	"github.com/dkorchagin/plume/internal/storage"
)

func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// index renders the global feed. The page body is cached per page number
// for a short TTL.
func (h *Handler) index(c *gin.Context) {
	page := parsePage(c)

	cacheKey := fmt.Sprintf("index:%d", page)
	if h.pages != nil {
		if body, ok := h.pages.Get(cacheKey); ok {
			c.Data(http.StatusOK, "text/html; charset=utf-8", body)
			return
		}
	}

	posts, err := h.store.Posts()
	if err != nil {
		h.serverError(c)
		return
	}

	body, err := h.renderBytes(c, "index.html", gin.H{
		"Page": pagination.Paginate(posts, h.pageSize, page),
	})
	if err != nil {
		h.serverError(c)
		return
	}
	if h.pages != nil {
		h.pages.Set(cacheKey, body)
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

func (h *Handler) groupPosts(c *gin.Context) {
	group, err := h.store.GroupBySlug(c.Param("slug"))
	if err != nil {
		h.lookupError(c, err)
		return
	}

	posts, err := h.store.PostsByGroup(group.ID)
	if err != nil {
		h.serverError(c)
		return
	}

	h.render(c, http.StatusOK, "group.html", gin.H{
		"Group": group,
		"Page":  pagination.Paginate(posts, h.pageSize, parsePage(c)),
	})
}

func (h *Handler) profile(c *gin.Context) {
	author, err := h.store.UserByUsername(c.Param("username"))
	if err != nil {
		h.lookupError(c, err)
		return
	}

	posts, err := h.store.PostsByAuthor(author.ID)
	if err != nil {
		h.serverError(c)
		return
	}

	following := false
	if user := currentUser(c); user != nil && user.ID != author.ID {
		following, err = h.store.Follows(user.ID, author.ID)
		if err != nil {
			h.serverError(c)
			return
		}
	}

	h.render(c, http.StatusOK, "profile.html", gin.H{
		"Author":    author,
		"Page":      pagination.Paginate(posts, h.pageSize, parsePage(c)),
		"Following": following,
	})
}

func (h *Handler) postView(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}

	comments, err := h.store.CommentsByPost(post.ID)
	if err != nil {
		h.serverError(c)
		return
	}

	h.render(c, http.StatusOK, "post.html", gin.H{
		"Post":     post,
		"Author":   post.Author,
		"Comments": comments,
		"Errors":   forms.Errors{},
		"Help":     forms.CommentHelpTexts,
	})
}

func (h *Handler) newPostForm(c *gin.Context) {
	h.renderPostForm(c, gin.H{"Edit": false, "Errors": forms.Errors{}})
}

func (h *Handler) newPost(c *gin.Context) {
	user := currentUser(c)
	text, groupID, image := h.postFormFields(c)

	in := forms.CreatePostInput{Text: text, GroupID: groupID, Image: image}
	if errs := in.Validate(h.store, h.uploads); !errs.Valid() {
		h.renderPostForm(c, gin.H{"Edit": false, "Errors": errs, "Text": text, "GroupID": groupID})
		return
	}

	imagePath := ""
	if image != nil {
		path, err := h.uploads.Save(image)
		if err != nil {
			h.serverError(c)
			return
		}
		imagePath = path
	}

	post := models.Post{
		Text:     strings.TrimSpace(text),
		PubDate:  time.Now(),
		AuthorID: user.ID,
		GroupID:  groupID,
		Image:    imagePath,
	}
	if err := h.store.CreatePost(&post); err != nil {
		h.serverError(c)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) postEditForm(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}
	if currentUser(c).ID != post.AuthorID {
		c.Redirect(http.StatusFound, postURL(post))
		return
	}

	h.renderPostForm(c, gin.H{
		"Edit":    true,
		"Errors":  forms.Errors{},
		"Post":    post,
		"Text":    post.Text,
		"GroupID": post.GroupID,
	})
}

func (h *Handler) postEdit(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}
	// Only the author may edit; everyone else is bounced to the read-only
	// view without an error.
	if currentUser(c).ID != post.AuthorID {
		c.Redirect(http.StatusFound, postURL(post))
		return
	}

	text, groupID, image := h.postFormFields(c)
	in := forms.EditPostInput{Text: text, GroupID: groupID, Image: image}
	if errs := in.Validate(h.store, h.uploads); !errs.Valid() {
		h.renderPostForm(c, gin.H{"Edit": true, "Errors": errs, "Post": post, "Text": text, "GroupID": groupID})
		return
	}

	post.Text = strings.TrimSpace(text)
	post.GroupID = groupID
	if image != nil {
		path, err := h.uploads.Save(image)
		if err != nil {
			h.serverError(c)
			return
		}
		post.Image = path
	}
	if err := h.store.UpdatePost(post); err != nil {
		h.serverError(c)
		return
	}

	c.Redirect(http.StatusFound, postURL(post))
}

func (h *Handler) addComment(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}

	in := forms.AddCommentInput{Text: c.PostForm("text")}
	if errs := in.Validate(); !errs.Valid() {
		comments, err := h.store.CommentsByPost(post.ID)
		if err != nil {
			h.serverError(c)
			return
		}
		h.render(c, http.StatusOK, "post.html", gin.H{
			"Post":     post,
			"Author":   post.Author,
			"Comments": comments,
			"Errors":   errs,
			"Help":     forms.CommentHelpTexts,
		})
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		Text:     strings.TrimSpace(in.Text),
		Created:  time.Now(),
		AuthorID: currentUser(c).ID,
	}
	if err := h.store.CreateComment(&comment); err != nil {
		h.serverError(c)
		return
	}

	c.Redirect(http.StatusFound, postURL(post))
}

// postFormFields pulls the create/edit post fields out of the multipart
// form. A missing or malformed group select is treated as no group; the
// group's existence is checked during validation.
func (h *Handler) postFormFields(c *gin.Context) (string, *uint, *multipart.FileHeader) {
	text := c.PostForm("text")

	var groupID *uint
	if raw := c.PostForm("group"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			v := uint(id)
			groupID = &v
		}
	}

	image, err := c.FormFile("image")
	if err != nil {
		image = nil
	}
	return text, groupID, image
}

func (h *Handler) renderPostForm(c *gin.Context, data gin.H) {
	groups, err := h.store.Groups()
	if err != nil {
		h.serverError(c)
		return
	}
	data["Groups"] = groups
	data["Help"] = forms.PostHelpTexts
	h.render(c, http.StatusOK, "new_post.html", data)
}

// lookupPost fetches the post named by the URL, rendering 404 when the
// author/id pair does not match. The bool reports whether the caller may
// proceed.
func (h *Handler) lookupPost(c *gin.Context) (*models.Post, bool) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		h.notFound(c)
		return nil, false
	}

	post, err := h.store.PostByAuthorAndID(c.Param("username"), uint(postID))
	if err != nil {
		h.lookupError(c, err)
		return nil, false
	}
	return post, true
}

func (h *Handler) lookupError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c)
		return
	}
	h.serverError(c)
}

func postURL(post *models.Post) string {
	return fmt.Sprintf("/%s/%d/", post.Author.Username, post.ID)
}
