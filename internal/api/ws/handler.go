// Package ws streams generation over a WebSocket so the host UI can drive
// its busy indicator from lifecycle events instead of polling.
package ws

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/session"
	"github.com/GriffinCanCode/SnapUI/backend/internal/generation"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SnapUI/backend/internal/shared/utils"
)

const (
	generateTimeout = 3 * time.Minute
	chatTimeout     = 2 * time.Minute
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Message is one inbound WebSocket request.
type Message struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id,omitempty"`
	Message    string `json:"message,omitempty"`
	Image      string `json:"image,omitempty"` // data URL
	Technology string `json:"technology,omitempty"`
}

// Handler manages WebSocket connections
type Handler struct {
	sessions  *session.Manager
	generator *generation.Service
	logger    *logging.Logger
	metrics   *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions *session.Manager, generator *generation.Service) *Handler {
	return &Handler{
		sessions:  sessions,
		generator: generator,
		logger:    logging.NewDefault(),
	}
}

// WithLogger sets the logger.
func (h *Handler) WithLogger(logger *logging.Logger) *Handler {
	h.logger = logger
	return h
}

// WithMetrics enables metrics collection.
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	reqCtx := c.Request.Context()

	h.send(conn, gin.H{
		"type":    "system",
		"message": "Connected to SnapUI Backend (Go)",
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}

		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "generate":
			h.handleGenerate(conn, msg, reqCtx)
		case "chat":
			h.handleChat(conn, msg, reqCtx)
		case "ping":
			h.send(conn, gin.H{"type": "pong"})
		default:
			h.sendError(conn, "unknown message type")
		}
	}
}

// handleGenerate runs the upload flow over the socket. The image arrives
// as a data URL; lifecycle events bracket the long gateway call.
func (h *Handler) handleGenerate(conn *websocket.Conn, msg Message, reqCtx context.Context) {
	_, data, ok := splitDataURL(msg.Image)
	if !ok {
		h.sendError(conn, "image must be a base64 data URL")
		return
	}

	// The data URL's declared MIME is client-controlled; decode and sniff
	// the bytes, same as the multipart upload path.
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		h.sendError(conn, "image payload is not valid base64")
		return
	}
	if len(raw) > utils.MaxImageSize {
		h.sendError(conn, "image exceeds size limit")
		return
	}
	detected := mimetype.Detect(raw)
	if !strings.HasPrefix(detected.String(), "image/") {
		h.sendError(conn, "payload is not an image")
		return
	}

	eventID := uuid.NewString()
	h.send(conn, gin.H{
		"type":      "generation_start",
		"event_id":  eventID,
		"message":   "Analyzing screenshot...",
		"timestamp": time.Now().Unix(),
	})

	ctx, cancel := context.WithTimeout(reqCtx, generateTimeout)
	defer cancel()

	h.send(conn, gin.H{
		"type":      "status",
		"event_id":  eventID,
		"message":   "Generating code...",
		"timestamp": time.Now().Unix(),
	})

	art := h.generator.FromImage(ctx, "", data, detected.String(), msg.Technology)

	sess, err := h.sessions.Create(art)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.send(conn, gin.H{
		"type":       "generated",
		"event_id":   eventID,
		"session_id": sess.ID,
		"technology": sess.Technology,
		"code":       sess.Code,
		"fallback":   sess.Fallback,
		"timestamp":  time.Now().Unix(),
	})

	h.send(conn, gin.H{
		"type":      "complete",
		"event_id":  eventID,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) handleChat(conn *websocket.Conn, msg Message, reqCtx context.Context) {
	if err := utils.ValidateID(msg.SessionID, "session_id", true); err != nil {
		h.sendError(conn, err.Error())
		return
	}
	if err := utils.ValidateMessage(msg.Message); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	sess, ok := h.sessions.Get(msg.SessionID)
	if !ok {
		h.sendError(conn, "session not found")
		return
	}

	eventID := uuid.NewString()
	h.send(conn, gin.H{
		"type":      "generation_start",
		"event_id":  eventID,
		"message":   "Applying change...",
		"timestamp": time.Now().Unix(),
	})

	ctx, cancel := context.WithTimeout(reqCtx, chatTimeout)
	defer cancel()

	reply, updated, err := h.generator.Refine(ctx, sess.ID, sess.Technology, sess.Code, msg.Message)
	if err != nil {
		h.sendError(conn, "generation service unavailable")
		return
	}

	if _, err := h.sessions.AppendMessages(sess.ID,
		session.Message{Role: "user", Content: msg.Message},
		session.Message{Role: "assistant", Content: reply},
	); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	code := sess.Code
	changed := false
	if updated != nil {
		stored, err := h.sessions.UpdateCode(sess.ID, updated.Code, updated.Framework)
		if err != nil {
			h.sendError(conn, err.Error())
			return
		}
		code = stored.Code
		changed = true
	}

	h.send(conn, gin.H{
		"type":       "generated",
		"event_id":   eventID,
		"session_id": sess.ID,
		"reply":      reply,
		"code":       code,
		"updated":    changed,
		"timestamp":  time.Now().Unix(),
	})

	h.send(conn, gin.H{
		"type":      "complete",
		"event_id":  eventID,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) send(conn *websocket.Conn, data interface{}) error {
	if m, isEvent := data.(gin.H); isEvent && h.metrics != nil {
		if t, ok := m["type"].(string); ok {
			h.metrics.RecordWSMessage("out", t)
		}
	}
	return conn.WriteJSON(data)
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return h.send(conn, gin.H{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}

// splitDataURL splits a "data:<mime>;base64,<payload>" string.
func splitDataURL(s string) (mime, data string, ok bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", "", false
	}
	rest := strings.TrimPrefix(s, "data:")

	head, payload, found := strings.Cut(rest, ",")
	if !found || payload == "" {
		return "", "", false
	}
	if !strings.HasSuffix(head, ";base64") {
		return "", "", false
	}

	mime = strings.TrimSuffix(head, ";base64")
	if mime == "" {
		return "", "", false
	}
	return mime, payload, true
}
