//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/SnapUI/backend/internal/server"
	"github.com/GriffinCanCode/SnapUI/backend/tests/helpers/testutil"
)

// fakeGateway mimics the generateContent endpoint. Upload calls get a
// component, chat calls get a refinement reply with a code block.
func fakeGateway(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := new(bytes.Buffer)
		body.ReadFrom(r.Body)

		text := "```jsx\nfunction App() { return null }\n```"
		if strings.Contains(body.String(), "Current code:") {
			text = "Changed it.\n```jsx\nfunction App() { return 2 }\n```"
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
	}))
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	gw := fakeGateway(t)
	t.Cleanup(gw.Close)

	cfg := config.Default()
	cfg.Generation.BaseURL = gw.URL
	cfg.Storage.Dir = t.TempDir()
	cfg.RateLimit.Enabled = false

	srv, err := server.NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	return srv
}

func uploadScreenshot(t *testing.T, srv *server.Server, technology string) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "screenshot.png")
	require.NoError(t, err)
	_, err = fw.Write(testutil.PNGBytes(t))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("technology", technology))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/upload-and-generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestUploadAndGenerate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newTestServer(t)
	out := uploadScreenshot(t, srv, "react")

	assert.Contains(t, out["session_id"], "sess_")
	assert.Equal(t, "react", out["technology"])
	assert.Equal(t, "function App() { return null }", out["code"])
	assert.NotEqual(t, true, out["fallback"])
}

func TestUploadRejectsNonImage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text, not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/upload-and-generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestGenerationFailureServesFallback(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(gw.Close)

	cfg := config.Default()
	cfg.Generation.BaseURL = gw.URL
	cfg.Generation.Retries = 0
	cfg.Storage.Dir = t.TempDir()
	cfg.RateLimit.Enabled = false

	srv, err := server.NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	out := uploadScreenshot(t, srv, "react")

	assert.Equal(t, true, out["fallback"])
	assert.Contains(t, out["code"], "Generation unavailable")
	// The fallback is html regardless of the requested technology.
	assert.Equal(t, "html", out["technology"])
}

func TestChatUpdatesSessionCode(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newTestServer(t)
	sessionID := uploadScreenshot(t, srv, "react")["session_id"].(string)

	payload, _ := json.Marshal(map[string]string{
		"session_id": sessionID,
		"message":    "make it return 2",
	})
	req := httptest.NewRequest("POST", "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, true, out["updated"])
	assert.Equal(t, "function App() { return 2 }", out["code"])

	// The session now carries the refined code and the transcript.
	req = httptest.NewRequest("GET", "/sessions/"+sessionID, nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var sess map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, "function App() { return 2 }", sess["code"])
	assert.Len(t, sess["messages"], 2)
}

func TestPreviewEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{
		"code":      "```jsx\nfunction Card(){return null}\n```",
		"framework": "react",
		"viewport":  "mobile",
	})
	req := httptest.NewRequest("POST", "/preview", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var surface map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &surface))
	assert.Contains(t, surface["load_key"], "react|mobile|")
	assert.Equal(t, "Card", surface["entry_point_hint"])
	assert.Contains(t, surface["document"], "function Card(){return null}")
	assert.NotContains(t, surface["document"], "```")
}

func TestPreviewSessionViewportSwitch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newTestServer(t)
	sessionID := uploadScreenshot(t, srv, "react")["session_id"].(string)

	loadKey := func(viewport string) string {
		req := httptest.NewRequest("GET", "/preview/"+sessionID+"?viewport="+viewport, nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var surface map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &surface))
		return surface["load_key"].(string)
	}

	desktop := loadKey("desktop")
	tablet := loadKey("tablet")

	assert.NotEqual(t, desktop, tablet)
	// Same inputs produce the same key again.
	assert.Equal(t, desktop, loadKey("desktop"))
}

func TestSessionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newTestServer(t)
	sessionID := uploadScreenshot(t, srv, "vue")["session_id"].(string)

	req := httptest.NewRequest("GET", "/sessions", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sessionID)

	req = httptest.NewRequest("DELETE", "/sessions/"+sessionID, nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/sessions/"+sessionID, nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := newTestServer(t)

	for _, path := range []string{"/", "/health", "/stats", "/metrics"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "endpoint %s", path)
	}
}
