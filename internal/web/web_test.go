package web_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkorchagin/plume/internal/cache"
	"github.com/dkorchagin/plume/internal/migrate"
	"github.com/dkorchagin/plume/internal/models"
	"github.com/dkorchagin/plume/internal/storage"
	"github.com/dkorchagin/plume/internal/uploads"
	"github.com/dkorchagin/plume/internal/web"
	_ "github.com/dkorchagin/plume/migrations"
)

const testPassword = "longenough"

type testServer struct {
	router *gin.Engine
	store  *storage.DBStorage
	pages  *cache.PageCache
}

func setupServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, migrate.NewMigrator(db).Up())

	store := storage.New(db)
	uploadStore, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	pages := cache.New(20 * time.Second)
	router, _, err := web.New(web.Options{
		Store:        store,
		Uploads:      uploadStore,
		PageSize:     10,
		IndexCache:   pages,
		TemplateGlob: "../../web/templates/*.html",
		Secret:       "test-secret",
	})
	require.NoError(t, err)

	return &testServer{router: router, store: store, pages: pages}
}

func (ts *testServer) createUser(t *testing.T, username string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Username: username, PasswordHash: string(hash), CreatedAt: time.Now()}
	require.NoError(t, ts.store.CreateUser(&user))
	return &user
}

func (ts *testServer) createPost(t *testing.T, author *models.User, text string, pubDate time.Time) *models.Post {
	post := models.Post{Text: text, PubDate: pubDate, AuthorID: author.ID}
	require.NoError(t, ts.store.CreatePost(&post))
	return &post
}

// login authenticates through the real login handler and returns the
// session cookies.
func (ts *testServer) login(t *testing.T, username string) []*http.Cookie {
	form := url.Values{"username": {username}, "password": {testPassword}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code, "login should redirect")
	return w.Result().Cookies()
}

func (ts *testServer) do(t *testing.T, method, target, contentType string, body *bytes.Buffer, cookies []*http.Cookie) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) get(t *testing.T, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodGet, target, "", nil, cookies)
}

// postMultipart submits a create/edit post form the way a browser does.
func postMultipart(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func (ts *testServer) postCount(t *testing.T) int {
	posts, err := ts.store.Posts()
	require.NoError(t, err)
	return len(posts)
}

func TestCreatePost(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	cookies := ts.login(t, "alice")

	body, contentType := postMultipart(t, map[string]string{"text": "my first post"})
	w := ts.do(t, http.MethodPost, "/new/", contentType, body, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	posts, err := ts.store.Posts()
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "my first post", posts[0].Text)
	assert.Equal(t, alice.ID, posts[0].AuthorID)
}

func TestCreatePostAnonymousRedirectsToLogin(t *testing.T) {
	ts := setupServer(t)

	body, contentType := postMultipart(t, map[string]string{"text": "sneaky"})
	w := ts.do(t, http.MethodPost, "/new/", contentType, body, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next="+url.QueryEscape("/new/"), w.Header().Get("Location"))
	assert.Zero(t, ts.postCount(t))
}

func TestCreatePostEmptyTextRerendersWithErrors(t *testing.T) {
	ts := setupServer(t)
	ts.createUser(t, "alice")
	cookies := ts.login(t, "alice")

	body, contentType := postMultipart(t, map[string]string{"text": "   "})
	w := ts.do(t, http.MethodPost, "/new/", contentType, body, cookies)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")
	assert.Zero(t, ts.postCount(t))
}

func TestCreatePostUnknownGroupRejected(t *testing.T) {
	ts := setupServer(t)
	ts.createUser(t, "alice")
	cookies := ts.login(t, "alice")

	body, contentType := postMultipart(t, map[string]string{"text": "hi", "group": "42"})
	w := ts.do(t, http.MethodPost, "/new/", contentType, body, cookies)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Select a valid group.")
	assert.Zero(t, ts.postCount(t))
}

func TestEditPostByAuthor(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	post := ts.createPost(t, alice, "original", time.Now())
	cookies := ts.login(t, "alice")

	target := fmt.Sprintf("/alice/%d/edit/", post.ID)
	body, contentType := postMultipart(t, map[string]string{"text": "edited"})
	w := ts.do(t, http.MethodPost, target, contentType, body, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/alice/%d/", post.ID), w.Header().Get("Location"))

	updated, err := ts.store.PostByAuthorAndID("alice", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
	assert.WithinDuration(t, post.PubDate, updated.PubDate, time.Second)
}

func TestEditPostByNonAuthorIsSilentlyRedirected(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	ts.createUser(t, "mallory")
	post := ts.createPost(t, alice, "untouchable", time.Now())
	cookies := ts.login(t, "mallory")

	target := fmt.Sprintf("/alice/%d/edit/", post.ID)
	body, contentType := postMultipart(t, map[string]string{"text": "defaced"})
	w := ts.do(t, http.MethodPost, target, contentType, body, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/alice/%d/", post.ID), w.Header().Get("Location"))

	kept, err := ts.store.PostByAuthorAndID("alice", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "untouchable", kept.Text)
	assert.Equal(t, alice.ID, kept.AuthorID)
	assert.Nil(t, kept.GroupID)
}

func TestPostDetail(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	post := ts.createPost(t, alice, "readable", time.Now())

	w := ts.get(t, fmt.Sprintf("/alice/%d/", post.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "readable")

	// The same post id under another username is a 404.
	ts.createUser(t, "bob")
	w = ts.get(t, fmt.Sprintf("/bob/%d/", post.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddCommentStoresSubmitter(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	bob := ts.createUser(t, "bob")
	post := ts.createPost(t, alice, "discuss", time.Now())
	cookies := ts.login(t, "bob")

	form := url.Values{"text": {"well said"}}
	body := bytes.NewBufferString(form.Encode())
	target := fmt.Sprintf("/alice/%d/comment/", post.ID)
	w := ts.do(t, http.MethodPost, target, "application/x-www-form-urlencoded", body, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/alice/%d/", post.ID), w.Header().Get("Location"))

	comments, err := ts.store.CommentsByPost(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "well said", comments[0].Text)
	assert.Equal(t, bob.ID, comments[0].AuthorID)
}

func TestAddCommentRequiresLogin(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	post := ts.createPost(t, alice, "quiet", time.Now())

	form := url.Values{"text": {"anon"}}
	body := bytes.NewBufferString(form.Encode())
	target := fmt.Sprintf("/alice/%d/comment/", post.ID)
	w := ts.do(t, http.MethodPost, target, "application/x-www-form-urlencoded", body, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/?next="))

	comments, err := ts.store.CommentsByPost(post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	ts.createUser(t, "bob")
	cookies := ts.login(t, "alice")

	w := ts.get(t, "/bob/follow/", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/bob/", w.Header().Get("Location"))

	follows, err := ts.store.FollowsByUser(alice.ID)
	require.NoError(t, err)
	assert.Len(t, follows, 1)

	// Following again does not duplicate the edge.
	ts.get(t, "/bob/follow/", cookies)
	follows, err = ts.store.FollowsByUser(alice.ID)
	require.NoError(t, err)
	assert.Len(t, follows, 1)

	w = ts.get(t, "/bob/unfollow/", cookies)
	assert.Equal(t, http.StatusFound, w.Code)

	follows, err = ts.store.FollowsByUser(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, follows)
}

func TestSelfFollowIsANoOp(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	cookies := ts.login(t, "alice")

	w := ts.get(t, "/alice/follow/", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/alice/", w.Header().Get("Location"))

	follows, err := ts.store.FollowsByUser(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, follows)
}

func TestUnfollowWithoutEdgeIs404(t *testing.T) {
	ts := setupServer(t)
	ts.createUser(t, "alice")
	ts.createUser(t, "bob")
	cookies := ts.login(t, "alice")

	w := ts.get(t, "/bob/unfollow/", cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowingFeed(t *testing.T) {
	ts := setupServer(t)
	ts.createUser(t, "alice")
	bob := ts.createUser(t, "bob")
	carol := ts.createUser(t, "carol")
	ts.createPost(t, bob, "bob writes", time.Now())
	ts.createPost(t, carol, "carol writes", time.Now())

	cookies := ts.login(t, "alice")
	ts.get(t, "/bob/follow/", cookies)

	w := ts.get(t, "/follow/", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bob writes")
	assert.NotContains(t, w.Body.String(), "carol writes")

	// A user who follows nobody sees an empty feed.
	carolCookies := ts.login(t, "carol")
	w = ts.get(t, "/follow/", carolCookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "bob writes")
}

func TestIndexPagination(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 12; i++ {
		ts.createPost(t, alice, fmt.Sprintf("entry-%02d", i), base.Add(time.Duration(i)*time.Minute))
	}

	w := ts.get(t, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	// Newest ten on page one, the two oldest pushed to page two.
	assert.Contains(t, body, "entry-12")
	assert.Contains(t, body, "entry-03")
	assert.NotContains(t, body, "entry-02")
	assert.NotContains(t, body, "entry-01")

	w = ts.get(t, "/?page=2", nil)
	body = w.Body.String()
	assert.Contains(t, body, "entry-02")
	assert.Contains(t, body, "entry-01")
	assert.NotContains(t, body, "entry-03")
}

func TestIndexPageCache(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	ts.createPost(t, alice, "cached entry", time.Now())

	w := ts.get(t, "/", nil)
	assert.Contains(t, w.Body.String(), "cached entry")

	// A post published while the page is cached is not visible yet.
	ts.createPost(t, alice, "fresh entry", time.Now())
	w = ts.get(t, "/", nil)
	assert.NotContains(t, w.Body.String(), "fresh entry")

	ts.pages.Flush()
	w = ts.get(t, "/", nil)
	assert.Contains(t, w.Body.String(), "fresh entry")
}

func TestGroupPage(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	group := models.Group{Title: "Go", Slug: "go", Description: "gophers"}
	require.NoError(t, ts.store.CreateGroup(&group))

	post := models.Post{Text: "in the group", PubDate: time.Now(), AuthorID: alice.ID, GroupID: &group.ID}
	require.NoError(t, ts.store.CreatePost(&post))
	ts.createPost(t, alice, "ungrouped", time.Now())

	w := ts.get(t, "/group/go/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "in the group")
	assert.NotContains(t, w.Body.String(), "ungrouped")

	w = ts.get(t, "/group/nope/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfilePage(t *testing.T) {
	ts := setupServer(t)
	alice := ts.createUser(t, "alice")
	bob := ts.createUser(t, "bob")
	ts.createPost(t, alice, "alice writes", time.Now())
	ts.createPost(t, bob, "bob writes", time.Now())

	w := ts.get(t, "/alice/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice writes")
	assert.NotContains(t, w.Body.String(), "bob writes")

	w = ts.get(t, "/nobody/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignupAndLogout(t *testing.T) {
	ts := setupServer(t)

	form := url.Values{"username": {"dora"}, "password": {testPassword}}
	body := bytes.NewBufferString(form.Encode())
	w := ts.do(t, http.MethodPost, "/auth/signup/", "application/x-www-form-urlencoded", body, nil)
	assert.Equal(t, http.StatusFound, w.Code)

	user, err := ts.store.UserByUsername("dora")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(testPassword)))

	cookies := w.Result().Cookies()
	w = ts.get(t, "/auth/logout/", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
