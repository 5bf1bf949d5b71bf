// Package http contains the REST handlers for the screenshot-to-code API.
package http

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/session"
	"github.com/GriffinCanCode/SnapUI/backend/internal/generation"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/viewport"
	"github.com/GriffinCanCode/SnapUI/backend/internal/shared/utils"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	sessions  *session.Manager
	generator *generation.Service
	previews  *preview.Service
	metrics   *monitoring.Metrics
}

// NewHandlers creates a new handler set
func NewHandlers(
	sessions *session.Manager,
	generator *generation.Service,
	previews *preview.Service,
	metrics *monitoring.Metrics,
) *Handlers {
	return &Handlers{
		sessions:  sessions,
		generator: generator,
		previews:  previews,
		metrics:   metrics,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "SnapUI Backend (Go)",
		"version": "0.2.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": gin.H{"active": h.sessions.Count()},
	})
}

// Stats exposes aggregate counters as JSON for the host UI dashboard.
// Prometheus exposition stays on /metrics.
func (h *Handlers) Stats(c *gin.Context) {
	snap := h.metrics.Snapshot()

	avgDuration := 0.0
	if snap.RequestCount > 0 {
		avgDuration = snap.TotalDuration / float64(snap.RequestCount)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_requests":       snap.TotalRequests,
		"total_errors":         snap.TotalErrors,
		"total_renders":        snap.TotalRenders,
		"total_fallbacks":      snap.TotalFallbacks,
		"active_sessions":      snap.ActiveSessions,
		"avg_request_duration": avgDuration,
	})
}

// UploadAndGenerate accepts a screenshot plus target technology, runs
// generation, stores the session, and returns the generated artifact. The
// endpoint never fails on generation problems: the session then carries
// the fallback artifact.
func (h *Handlers) UploadAndGenerate(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	if header.Size > utils.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds size limit"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, utils.MaxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	if len(data) > utils.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds size limit"})
		return
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error": "file is not an image", "detected": mime.String(),
		})
		return
	}

	technology := c.PostForm("technology")

	art := h.generator.FromImage(
		c.Request.Context(),
		"", // session is created after generation; artifact carries no ID yet
		base64.StdEncoding.EncodeToString(data),
		mime.String(),
		technology,
	)

	sess, err := h.sessions.Create(art)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"technology": sess.Technology,
		"code":       sess.Code,
		"fallback":   sess.Fallback,
	})
}

// ChatRequest is one refinement turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat refines a session's code with one instruction.
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateID(req.SessionID, "session_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateMessage(req.Message); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	reply, updated, err := h.generator.Refine(
		c.Request.Context(), sess.ID, sess.Technology, sess.Code, req.Message)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation service unavailable"})
		return
	}

	if _, err := h.sessions.AppendMessages(sess.ID,
		session.Message{Role: "user", Content: req.Message},
		session.Message{Role: "assistant", Content: reply},
	); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	code := sess.Code
	changed := false
	if updated != nil {
		stored, err := h.sessions.UpdateCode(sess.ID, updated.Code, updated.Framework)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		code = stored.Code
		changed = true
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"reply":      reply,
		"code":       code,
		"updated":    changed,
	})
}

// ListSessions lists all known sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions := h.sessions.List()
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSession returns one session with its full state
func (h *Handlers) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := utils.ValidateID(sessionID, "session_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := h.sessions.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, sess)
}

// DeleteSession removes a session
func (h *Handlers) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := utils.ValidateID(sessionID, "session_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.Delete(sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": sessionID})
}

// PreviewRequest is an ad-hoc render request.
type PreviewRequest struct {
	Code      string `json:"code"`
	Framework string `json:"framework"`
	Viewport  string `json:"viewport"`
}

// PreviewArtifact builds a preview surface for arbitrary code.
func (h *Handlers) PreviewArtifact(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateCode(req.Code); err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}

	art := artifact.New(req.Code, artifact.ParseFramework(req.Framework), "")
	surface := h.previews.Render(c.Request.Context(), art, viewport.ParseProfile(req.Viewport))

	c.JSON(http.StatusOK, surface)
}

// PreviewSession renders a session's current artifact. The viewport query
// parameter selects the frame profile; each change yields a new load key.
func (h *Handlers) PreviewSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := utils.ValidateID(sessionID, "session_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := h.sessions.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	vp := viewport.ParseProfile(c.Query("viewport"))
	surface := h.previews.Render(c.Request.Context(), sess.Artifact(), vp)

	c.JSON(http.StatusOK, surface)
}
