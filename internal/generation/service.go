package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
	"github.com/GriffinCanCode/SnapUI/backend/internal/generation/prompts"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/monitoring"
)

// Service wraps the gateway client with prompt selection, reply
// extraction, and fallback construction.
type Service struct {
	client  Client
	library *prompts.Library
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewService creates a generation service.
func NewService(client Client, library *prompts.Library) *Service {
	return &Service{
		client:  client,
		library: library,
		logger:  logging.NewDefault(),
	}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(logger *logging.Logger) *Service {
	s.logger = logger
	return s
}

// WithMetrics enables metrics collection.
func (s *Service) WithMetrics(metrics *monitoring.Metrics) *Service {
	s.metrics = metrics
	return s
}

// FromImage generates code for a screenshot. It never returns an error:
// any terminal gateway failure yields the deterministic fallback artifact
// so the caller always has valid code to render and store.
func (s *Service) FromImage(ctx context.Context, sessionID, imageBase64, imageMIME, technology string) artifact.Artifact {
	fw := artifact.ParseFramework(technology)
	start := time.Now()

	reply, err := s.client.Generate(ctx, Request{
		System:      s.library.System(fw),
		Prompt:      fmt.Sprintf("Generate %s code for this screenshot.", fw),
		ImageBase64: imageBase64,
		ImageMIME:   imageMIME,
	})
	if err != nil {
		s.recordCall("upload", "error", start)
		return s.fallback(sessionID, fw, err)
	}

	code := FromReply(reply, fw)
	if code == "" {
		s.recordCall("upload", "error", start)
		return s.fallback(sessionID, fw, fmt.Errorf("gateway returned an empty artifact"))
	}

	s.recordCall("upload", "success", start)
	s.logger.Info("code generated",
		zap.String("session_id", sessionID),
		zap.String("framework", fw.String()),
		zap.Int("code_size", len(code)),
	)

	art := artifact.New(code, fw, sessionID)
	art.ImageBase64 = imageBase64
	return art
}

// Refine runs one chat turn against the current session code. The returned
// artifact is nil when the reply carried no code block; the session keeps
// its current code and only the prose reply is surfaced. A gateway failure
// returns an error so the chat endpoint can report it without touching the
// stored artifact.
func (s *Service) Refine(ctx context.Context, sessionID string, fw artifact.Framework, currentCode, instruction string) (string, *artifact.Artifact, error) {
	start := time.Now()

	prompt := fmt.Sprintf("Current code:\n```\n%s\n```\n\n%s", currentCode, instruction)
	reply, err := s.client.Generate(ctx, Request{
		System: s.library.ChatSystem(),
		Prompt: prompt,
	})
	if err != nil {
		s.recordCall("chat", "error", start)
		return "", nil, fmt.Errorf("refine: %w", err)
	}

	s.recordCall("chat", "success", start)

	code, ok := Block(reply)
	if !ok {
		return reply, nil, nil
	}

	art := artifact.New(code, fw, sessionID)
	return reply, &art, nil
}

func (s *Service) fallback(sessionID string, fw artifact.Framework, cause error) artifact.Artifact {
	s.logger.Warn("generation failed, serving fallback",
		zap.String("session_id", sessionID),
		zap.String("framework", fw.String()),
		zap.Error(cause),
	)
	if s.metrics != nil {
		s.metrics.IncGenerationFallbacks()
	}
	return artifact.NewFallback(sessionID, reason(cause))
}

func (s *Service) recordCall(kind, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordGeneration(kind, status, time.Since(start))
	}
}

// reason maps a gateway error to user-facing fallback text. Timeouts get
// their own wording; everything else stays generic so internal detail does
// not leak into the rendered document.
func reason(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "timeout"):
		return "The generation service took too long to respond."
	case strings.Contains(msg, "status 429"):
		return "The generation service is over capacity right now."
	case strings.Contains(msg, "circuit breaker is open"):
		return "The generation service is recovering from repeated failures."
	default:
		return "The generation service could not complete the request."
	}
}
