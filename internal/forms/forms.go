// Package forms holds the schema structs validated before any handler
// touches the database. Each operation has its own input type; Validate
// returns a map of field errors suitable for inline display.
package forms

import (
	"mime/multipart"
	"strings"

	"github.com/dkorchagin/plume/internal/models"
)

// Errors maps a field name to its validation message. An empty map means
// the input is valid.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

// GroupFinder resolves a submitted group id against existing groups.
type GroupFinder interface {
	GroupByID(id uint) (*models.Group, error)
}

// ImageChecker verifies that an upload is a well-formed image.
type ImageChecker interface {
	CheckImage(fh *multipart.FileHeader) error
}

// Help texts shown next to the form fields.
var (
	PostHelpTexts = map[string]string{
		"group": "Pick a group from the list",
		"text":  "The post text is required",
		"image": "Attach an optional picture to the post",
	}
	CommentHelpTexts = map[string]string{
		"text": "Your comment text",
	}
)

// CreatePostInput carries the fields a user may submit when publishing a
// new post.
type CreatePostInput struct {
	Text    string
	GroupID *uint
	Image   *multipart.FileHeader
}

func (in *CreatePostInput) Validate(groups GroupFinder, images ImageChecker) Errors {
	return validatePostFields(in.Text, in.GroupID, in.Image, groups, images)
}

// EditPostInput carries the fields a post's author may change. The
// publication date and author are not part of the schema.
type EditPostInput struct {
	Text    string
	GroupID *uint
	Image   *multipart.FileHeader
}

func (in *EditPostInput) Validate(groups GroupFinder, images ImageChecker) Errors {
	return validatePostFields(in.Text, in.GroupID, in.Image, groups, images)
}

func validatePostFields(text string, groupID *uint, image *multipart.FileHeader,
	groups GroupFinder, images ImageChecker) Errors {

	errs := Errors{}
	if strings.TrimSpace(text) == "" {
		errs["text"] = "This field is required."
	}
	if groupID != nil {
		if _, err := groups.GroupByID(*groupID); err != nil {
			errs["group"] = "Select a valid group."
		}
	}
	if image != nil {
		if err := images.CheckImage(image); err != nil {
			errs["image"] = "Upload a valid image."
		}
	}
	return errs
}

// AddCommentInput carries the single text field of a comment.
type AddCommentInput struct {
	Text string
}

func (in *AddCommentInput) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(in.Text) == "" {
		errs["text"] = "This field is required."
	}
	return errs
}

// SignupInput carries the registration fields.
type SignupInput struct {
	Username string
	Password string
}

func (in *SignupInput) Validate() Errors {
	errs := Errors{}
	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		errs["username"] = "This field is required."
	case strings.ContainsAny(username, " /"):
		errs["username"] = "Usernames may not contain spaces or slashes."
	}
	if len(in.Password) < 8 {
		errs["password"] = "Passwords must be at least 8 characters."
	}
	return errs
}

// LoginInput carries the login fields.
type LoginInput struct {
	Username string
	Password string
}

func (in *LoginInput) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(in.Username) == "" {
		errs["username"] = "This field is required."
	}
	if in.Password == "" {
		errs["password"] = "This field is required."
	}
	return errs
}
