package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/1rvyn/web-stories-editor/dashboard"
	"github.com/1rvyn/web-stories-editor/database"
	"github.com/1rvyn/web-stories-editor/media"
	"github.com/1rvyn/web-stories-editor/middleware"
	"github.com/1rvyn/web-stories-editor/models"
	"github.com/1rvyn/web-stories-editor/stories"
	"github.com/1rvyn/web-stories-editor/views"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testSecret = []byte("routes-secret")

const (
	audience = "stories-api"
	domain   = "tenant.example"
)

type testServer struct {
	app     *fiber.App
	db      *gorm.DB
	storage *media.Memory
	tokens  map[string]string
	userIDs map[string]uint
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	log := zap.NewNop()
	users := database.NewUsers(db)
	settings := database.NewSettings(db)
	listing := database.NewListingPages(db)
	images := database.NewImages(db)
	mediaItems := database.NewMediaItems(db)
	documents := database.NewDocuments(db)
	storage := &media.Memory{BaseURL: "https://media.example"}

	builder := &dashboard.Builder{
		Listing:  dashboard.ListingPages{Pages: listing},
		EditURLs: dashboard.AdminURLs{Prefix: "/admin"},
		Location: time.UTC,
		Logger:   log,
	}
	h := &Handler{
		Stories:  stories.NewService(database.NewStories(db), settings, builder, "default", log),
		Settings: settings,
		Images:   images,
		Media:    media.NewImages(storage, images, log),
		Listing:  listing,
		Users:    users,
		Site:     "default",
		Log:      log,

		MediaItems:    mediaItems,
		MediaFiles:    media.NewItems(storage, mediaItems, log),
		Documents:     documents,
		DocumentFiles: media.NewDocuments(storage, documents, log),
		AdminPath:     "/admin",
	}

	s := &testServer{db: db, storage: storage, tokens: map[string]string{}, userIDs: map[string]uint{}}
	for _, sub := range []string{"alice", "bob"} {
		user, err := users.Upsert(context.Background(), models.User{Auth0ID: "auth0|" + sub, Email: sub + "@example.org", Name: sub})
		require.NoError(t, err)
		s.userIDs[sub] = user.ID
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "auth0|" + sub,
			"aud": audience,
			"iss": middleware.IssuerFor(domain),
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(testSecret)
		require.NoError(t, err)
		s.tokens[sub] = token
	}

	auth := &middleware.Auth{
		Keyfunc:  func(*jwt.Token) (interface{}, error) { return testSecret, nil },
		Audience: audience,
		Issuer:   middleware.IssuerFor(domain),
		Users:    users,
		Logger:   log,
	}
	store := session.New()
	s.app = fiber.New(fiber.Config{Views: views.Engine()})
	s.app.Get("/sign-in/:user", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sess.Set("user_id", s.userIDs[c.Params("user")])
		return sess.Save()
	})
	h.API(s.app.Group("/api", auth.Required()))
	h.Admin(s.app.Group("/admin", middleware.SessionAuthRequired(store, "/login/google", log)))
	h.Public(s.app)
	return s
}

func (s *testServer) do(t *testing.T, user, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[user])
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (s *testServer) upload(t *testing.T, path string, files map[string][]byte, fields map[string]string) (*http.Response, []byte) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		field, fileName, _ := strings.Cut(name, ":")
		fw, err := mw.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.tokens["alice"])
	return s.send(t, req)
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func (s *testServer) createStory(t *testing.T, body map[string]any) uint {
	t.Helper()
	resp, out := s.do(t, "alice", "POST", "/api/stories", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(out))
	return decode[stories.EditorView](t, out).ID
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, "", "GET", "/api/web-stories-list", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebStoriesList(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		s.createStory(t, map[string]any{"title": fmt.Sprintf("Story %d", i)})
	}

	resp, out := s.do(t, "alice", "GET", "/api/web-stories-list?page=abc", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	res := decode[map[string]any](t, out)
	assert.Equal(t, float64(1), res["totalPages"])
	assert.Len(t, res["fetchedStoryIds"], 3)
	assert.Equal(t, map[string]any{"all": float64(3), "publish": float64(0)}, res["totalStoriesByStatus"])

	items := res["stories"].(map[string]any)
	first := items["1"].(map[string]any)
	assert.Equal(t, "Story 0", first["title"])
	assert.Equal(t, "draft", first["status"])
	assert.Equal(t, "http://example.com/admin/web-stories/edit/1/", first["editStoryLink"])
}

func TestUpdateWebStory(t *testing.T) {
	s := newTestServer(t)
	id := s.createStory(t, map[string]any{"title": "Before"})
	path := fmt.Sprintf("/api/web-stories-update/%d", id)

	resp, out := s.do(t, "alice", "POST", path, map[string]any{"title": "After"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(out))
	cfg := decode[dashboard.Config](t, out)
	assert.Equal(t, "After", cfg.Title)
	assert.NotEmpty(t, cfg.Modified)

	resp, out = s.do(t, "alice", "GET", path, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "After", decode[dashboard.Config](t, out).Title)

	resp, _ = s.do(t, "alice", "POST", path, map[string]any{"title": 5})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, "alice", "POST", path, map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, "alice", "GET", "/api/web-stories-update/999", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDuplicateWebStory(t *testing.T) {
	s := newTestServer(t)
	id := s.createStory(t, map[string]any{"title": "Original", "slug": "original"})

	resp, out := s.do(t, "alice", "POST", fmt.Sprintf("/api/web-stories-duplicate/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(out))
	cfg := decode[dashboard.Config](t, out)
	assert.Equal(t, "Original - Copy", cfg.Title)
	assert.Equal(t, "draft", cfg.Status)
	assert.NotEqual(t, id, cfg.ID)

	resp, _ = s.do(t, "alice", "POST", "/api/web-stories-duplicate/999", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPublishAndServe(t *testing.T) {
	s := newTestServer(t)

	resp, out := s.do(t, "alice", "PUT", "/api/listing-page", map[string]any{"title": "Stories", "slug": "stories"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(out))

	doc := `<html><head></head><body><amp-story>Hello</amp-story></body></html>`
	id := s.createStory(t, map[string]any{"title": "Hello", "slug": "hello", "html": doc})

	resp, out = s.do(t, "alice", "POST", fmt.Sprintf("/api/stories/%d/publish", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(out))
	cfg := decode[dashboard.Config](t, out)
	assert.Equal(t, "publish", cfg.Status)
	assert.Equal(t, "http://example.com/stories/hello", cfg.Link)
	assert.Equal(t, cfg.Link, cfg.PreviewLink)

	resp, out = s.do(t, "", "GET", "/stories/hello/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, doc, string(out))

	resp, _ = s.do(t, "", "GET", fmt.Sprintf("/stories/%d/", id), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, out = s.do(t, "", "GET", "/stories/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(out), `href="http://example.com/stories/hello"`)

	resp, out = s.do(t, "", "GET", "/sitemap.xml", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(out), "<loc>http://example.com/stories/hello</loc>")

	resp, _ = s.do(t, "", "GET", "/elsewhere/hello/", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, out = s.do(t, "alice", "POST", fmt.Sprintf("/api/stories/%d/unpublish", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(out))
	resp, _ = s.do(t, "", "GET", "/stories/hello/", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, "alice", "POST", fmt.Sprintf("/api/stories/%d/unpublish", id), nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSaveAppliesSettings(t *testing.T) {
	s := newTestServer(t)

	resp, out := s.do(t, "alice", "POST", "/api/settings", map[string]any{"videoCache": true, "googleAnalyticsId": "G-123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(out))
	settings := decode[map[string]any](t, out)["settings"].(map[string]any)
	assert.Equal(t, true, settings["videoCache"])
	assert.Equal(t, "G-123", settings["googleAnalyticsId"])
	assert.Equal(t, float64(7), settings["defaultPageDuration"])

	resp, _ = s.do(t, "alice", "POST", "/api/settings", map[string]any{"defaultPageDuration": 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	id := s.createStory(t, nil)
	doc := `<html><head><script async src="https://cdn.ampproject.org/v0.js"></script></head>` +
		`<body><amp-story><amp-video src="v.mp4"></amp-video></amp-story></body></html>`
	resp, out = s.do(t, "alice", "PUT", fmt.Sprintf("/api/stories/%d", id), map[string]any{"html": doc})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(out))

	view := decode[stories.EditorView](t, out)
	assert.Contains(t, view.HTML, `cache="google"`)
	assert.Contains(t, view.HTML, `"gtag_id":"G-123"`)

	resp, out = s.do(t, "alice", "GET", fmt.Sprintf("/api/stories/%d/preview", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, view.HTML, string(out))
}

func TestLockConflicts(t *testing.T) {
	s := newTestServer(t)
	id := s.createStory(t, map[string]any{"title": "Locked"})

	resp, _ := s.do(t, "alice", "POST", fmt.Sprintf("/api/stories/%d/lock", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, "bob", "PUT", fmt.Sprintf("/api/stories/%d", id), map[string]any{"title": "Mine"})
	assert.Equal(t, fiber.StatusLocked, resp.StatusCode)
	resp, _ = s.do(t, "bob", "POST", fmt.Sprintf("/api/stories/%d/unlock", id), nil)
	assert.Equal(t, fiber.StatusLocked, resp.StatusCode)
	resp, _ = s.do(t, "alice", "POST", fmt.Sprintf("/api/stories/%d/lock", id), nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = s.do(t, "alice", "POST", fmt.Sprintf("/api/stories/%d/unlock", id), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, "bob", "PUT", fmt.Sprintf("/api/stories/%d", id), map[string]any{"title": "Mine"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, out := s.do(t, "bob", "GET", fmt.Sprintf("/api/stories/%d/revisions", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[map[string][]models.Revision](t, out)["revisions"], 2)
}

func TestSlugCollisionIsSuffixed(t *testing.T) {
	s := newTestServer(t)
	s.createStory(t, map[string]any{"slug": "same"})
	id := s.createStory(t, map[string]any{"slug": "same"})

	resp, out := s.do(t, "alice", "GET", fmt.Sprintf("/api/stories/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "same-2", decode[stories.EditorView](t, out).Slug)
}

func TestImagesAndPublisherLogos(t *testing.T) {
	s := newTestServer(t)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 96, 64))))

	resp, out := s.upload(t, "/api/images", map[string][]byte{"file:logo.png": img.Bytes()}, map[string]string{"title": "Brand"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(out))

	uploaded := decode[imageResponse](t, out)
	assert.Equal(t, "Brand", uploaded.Title)
	assert.Equal(t, "image/png", uploaded.MimeType)
	assert.Equal(t, imageSize{Width: 96, Height: 64}, uploaded.Size)
	assert.True(t, strings.HasPrefix(uploaded.DownloadURL, "https://media.example/images/"))

	resp, out = s.do(t, "alice", "GET", fmt.Sprintf("/api/images/%d", uploaded.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, uploaded, decode[imageResponse](t, out))

	resp, out = s.do(t, "alice", "POST", "/api/publisher-logos", map[string]any{"imageIds": []uint{uploaded.ID}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(out))
	logos := decode[[]publisherLogo](t, out)
	require.Len(t, logos, 1)
	assert.Equal(t, uploaded.ID, logos[0].ID)
	assert.True(t, logos[0].Default)
	assert.Equal(t, uploaded.DownloadURL, logos[0].URL)

	resp, _ = s.do(t, "alice", "POST", "/api/publisher-logos", map[string]any{"imageIds": []uint{999}})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, out = s.do(t, "alice", "DELETE", fmt.Sprintf("/api/publisher-logos/%d", uploaded.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]publisherLogo](t, out))

	resp, _ = s.do(t, "alice", "POST", fmt.Sprintf("/api/publisher-logos/%d/default", uploaded.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// claimSlugOnCreate makes every story insert lose the race for its slug to
// a row written just before it in the same transaction.
func claimSlugOnCreate(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:claim_slug", func(tx *gorm.DB) {
		story, ok := tx.Statement.Dest.(*models.Story)
		if !ok || story.Slug == nil {
			return
		}
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO web_stories (title, slug, config, html, live, has_unpublished_changes, locked, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			"Racer", *story.Slug, "{}", "", false, false, false, now, now,
		)
	})
	require.NoError(t, err)
}

func TestSlugRaceAnswersConflict(t *testing.T) {
	s := newTestServer(t)
	claimSlugOnCreate(t, s.db)

	resp, out := s.do(t, "alice", "POST", "/api/stories", map[string]any{"title": "Contested", "slug": "contested"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, string(out))
	assert.Contains(t, string(out), models.ErrSlugConflict.Error())
}

func TestListingPageRejectsReservedSlugs(t *testing.T) {
	s := newTestServer(t)
	for _, slug := range []string{"api", "admin", "media", "login", "callback", "metrics"} {
		resp, _ := s.do(t, "alice", "PUT", "/api/listing-page", map[string]any{"title": "Stories", "slug": slug})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, slug)
	}
	resp, _ := s.do(t, "alice", "PUT", "/api/listing-page", map[string]any{"title": "Stories", "slug": "stories"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMediaAndDocuments(t *testing.T) {
	s := newTestServer(t)

	var poster bytes.Buffer
	require.NoError(t, png.Encode(&poster, image.NewRGBA(image.Rect(0, 0, 9, 16))))

	resp, out := s.upload(t, "/api/media",
		map[string][]byte{"file:intro.mp4": []byte("mp4 bytes"), "thumbnail:poster.png": poster.Bytes()},
		map[string]string{"title": "Intro", "duration": "3.5", "width": "720", "height": "1280"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(out))
	video := decode[mediaResponse](t, out)
	assert.Equal(t, "Intro", video.Title)
	assert.Equal(t, models.MediaVideo, video.Type)
	assert.Equal(t, "video/mp4", video.MimeType)
	assert.Equal(t, 3.5, video.Duration)
	require.NotNil(t, video.Width)
	assert.Equal(t, 720, *video.Width)
	assert.True(t, strings.HasPrefix(video.DownloadURL, "https://media.example/media/"))
	assert.True(t, strings.HasPrefix(video.Thumbnail, "https://media.example/media/thumbnails/"))

	resp, out = s.upload(t, "/api/media", map[string][]byte{"file:theme.mp3": []byte("ID3 tagged")}, map[string]string{"type": "audio"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(out))
	assert.Equal(t, "audio/mpeg", decode[mediaResponse](t, out).MimeType)

	for name, tc := range map[string]struct {
		files  map[string][]byte
		fields map[string]string
	}{
		"missing file":  {},
		"wrong type":    {files: map[string][]byte{"file:theme.mp3": []byte("ID3")}, fields: map[string]string{"type": "video"}},
		"unknown type":  {files: map[string][]byte{"file:a.mp4": []byte("x")}, fields: map[string]string{"type": "image"}},
		"bad duration":  {files: map[string][]byte{"file:a.mp4": []byte("x")}, fields: map[string]string{"duration": "long"}},
		"bad width":     {files: map[string][]byte{"file:a.mp4": []byte("x")}, fields: map[string]string{"width": "-3"}},
		"not media":     {files: map[string][]byte{"file:notes.txt": []byte("hello")}},
		"bad thumbnail": {files: map[string][]byte{"file:a.mp4": []byte("x"), "thumbnail:t.png": []byte("nope")}},
	} {
		resp, out := s.upload(t, "/api/media", tc.files, tc.fields)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "%s: %s", name, out)
	}

	resp, out = s.do(t, "alice", "GET", "/api/media?type=video", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	videos := decode[listPage[mediaResponse]](t, out)
	assert.Equal(t, int64(1), videos.Meta.TotalCount)
	require.Len(t, videos.Items, 1)
	assert.Equal(t, video, videos.Items[0])

	resp, out = s.do(t, "alice", "GET", "/api/media", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), decode[listPage[mediaResponse]](t, out).Meta.TotalCount)

	resp, _ = s.do(t, "alice", "GET", "/api/media?type=image", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, out = s.do(t, "alice", "GET", fmt.Sprintf("/api/media/%d", video.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, video, decode[mediaResponse](t, out))

	resp, out = s.upload(t, "/api/documents", map[string][]byte{"file:brief.pdf": []byte("%PDF-1.4")}, map[string]string{"title": "Brief"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(out))
	doc := decode[documentResponse](t, out)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.True(t, strings.HasPrefix(doc.DownloadURL, "https://media.example/documents/"))

	resp, out = s.do(t, "alice", "GET", "/api/documents", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	docs := decode[listPage[documentResponse]](t, out)
	assert.Equal(t, 1, docs.Meta.TotalPages)
	assert.Equal(t, []documentResponse{doc}, docs.Items)

	resp, _ = s.do(t, "alice", "GET", "/api/documents/999", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminPagesRender(t *testing.T) {
	s := newTestServer(t)
	id := s.createStory(t, map[string]any{"title": "Hello <World>"})

	resp, _ := s.do(t, "", "GET", "/admin/web-stories/", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login/google", resp.Header.Get("Location"))

	resp, _ = s.do(t, "", "GET", "/sign-in/alice", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	render := func(path string) string {
		req := httptest.NewRequest("GET", path, nil)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		resp, out := s.send(t, req)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(out))
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		return string(out)
	}

	page := render("/admin/web-stories/")
	assert.Contains(t, page, "Signed in as alice")
	assert.Contains(t, page, `"editStoryLink":"http://example.com/admin/web-stories/edit/1/"`)
	assert.Contains(t, page, `"title":"Hello \u003cWorld\u003e"`)
	assert.NotContains(t, page, "<World>")

	page = render(fmt.Sprintf("/admin/web-stories/edit/%d/", id))
	assert.Contains(t, page, "<title>Hello &lt;World&gt; | Web Stories</title>")
	assert.Contains(t, page, `"title":"Hello \u003cWorld\u003e"`)
	assert.Contains(t, page, `"permalinkTemplate":`)
}
