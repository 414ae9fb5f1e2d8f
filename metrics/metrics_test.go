package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCollectors(t *testing.T) {
	StoryEvents.WithLabelValues("publish").Inc()
	TransformsApplied.WithLabelValues("video_cache").Inc()
	MediaUploads.WithLabelValues("video").Inc()

	app := fiber.New()
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `web_stories_story_events_total{event="publish"}`))
	assert.True(t, strings.Contains(string(body), `web_stories_html_transforms_total{transform="video_cache"}`))
	assert.True(t, strings.Contains(string(body), `web_stories_media_uploads_total{kind="video"}`))
}
