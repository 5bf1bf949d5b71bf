package ws

import (
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/session"
	"github.com/GriffinCanCode/SnapUI/backend/internal/generation"
	"github.com/GriffinCanCode/SnapUI/backend/internal/generation/prompts"
	"github.com/GriffinCanCode/SnapUI/backend/tests/helpers/testutil"
)

func TestSplitDataURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMIME string
		wantData string
		wantOK   bool
	}{
		{
			name:     "png data url",
			input:    "data:image/png;base64,aW1hZ2U=",
			wantMIME: "image/png",
			wantData: "aW1hZ2U=",
			wantOK:   true,
		},
		{
			name:   "missing prefix",
			input:  "image/png;base64,aW1hZ2U=",
			wantOK: false,
		},
		{
			name:   "not base64 encoded",
			input:  "data:text/plain,hello",
			wantOK: false,
		},
		{
			name:   "empty payload",
			input:  "data:image/png;base64,",
			wantOK: false,
		},
		{
			name:   "missing mime",
			input:  "data:;base64,aW1hZ2U=",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, data, ok := splitDataURL(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("splitDataURL() ok = %v, want %v", ok, tt.wantOK)
			}
			if mime != tt.wantMIME || data != tt.wantData {
				t.Errorf("splitDataURL() = (%q, %q), want (%q, %q)", mime, data, tt.wantMIME, tt.wantData)
			}
		})
	}
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	library, err := prompts.Load()
	require.NoError(t, err)

	client := testutil.NewMockGenerationClient(t, "function App(){return null}")
	generator := generation.NewService(client, library)
	sessions := session.NewManager(t.TempDir(), false)

	return NewHandler(sessions, generator)
}

func dialTestHandler(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/stream", h.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	// Welcome frame arrives before any request is processed.
	var welcome map[string]interface{}
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, "system", welcome["type"])

	return conn
}

// The data URL's declared MIME is client-controlled; only the sniffed
// bytes decide whether the payload counts as an image.
func TestGenerateRejectsSpoofedImageMIME(t *testing.T) {
	conn := dialTestHandler(t, newTestHandler(t))

	payload := base64.StdEncoding.EncodeToString([]byte("plain text, not an image"))
	require.NoError(t, conn.WriteJSON(Message{
		Type:       "generate",
		Technology: "react",
		Image:      "data:image/png;base64," + payload,
	}))

	var reply map[string]interface{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply["type"])
	assert.Equal(t, "payload is not an image", reply["message"])
}

func TestGenerateSniffsRealImage(t *testing.T) {
	conn := dialTestHandler(t, newTestHandler(t))

	// Declared MIME is wrong on purpose; the bytes are a PNG.
	png := testutil.PNGBytes(t)
	require.NoError(t, conn.WriteJSON(Message{
		Type:       "generate",
		Technology: "react",
		Image:      "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(png),
	}))

	var types []string
	for {
		var reply map[string]interface{}
		require.NoError(t, conn.ReadJSON(&reply))

		typ, _ := reply["type"].(string)
		types = append(types, typ)

		if typ == "generated" {
			assert.Equal(t, "function App(){return null}", reply["code"])
			assert.Equal(t, false, reply["fallback"])
		}
		if typ == "complete" || typ == "error" {
			break
		}
	}

	assert.Contains(t, types, "generated")
	assert.NotContains(t, types, "error")
}
