// Package session stores project sessions: the uploaded screenshot, the
// generated artifact, and the refinement conversation. Sessions live in an
// in-memory cache backed by gzip-compressed JSON files so a restart does
// not lose work.
package session

import (
	"time"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
)

// Message is one chat turn in a session.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one screenshot-to-code project.
type Session struct {
	ID          string             `json:"id"`
	Technology  artifact.Framework `json:"technology"`
	ImageBase64 string             `json:"image_base64,omitempty"`
	Code        string             `json:"code"`
	Fallback    bool               `json:"fallback,omitempty"`
	Messages    []Message          `json:"messages,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Metadata is the listing view of a session, without the heavy fields.
type Metadata struct {
	ID           string             `json:"id"`
	Technology   artifact.Framework `json:"technology"`
	MessageCount int                `json:"message_count"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// clone deep-copies a session, including the message slice. Writers mutate
// a clone and swap it in, so pointers handed to readers stay immutable.
func (s *Session) clone() *Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return &out
}

// ToMetadata strips a session down to its listing form.
func (s *Session) ToMetadata() Metadata {
	return Metadata{
		ID:           s.ID,
		Technology:   s.Technology,
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// Artifact rebuilds the renderable artifact from the stored session state.
func (s *Session) Artifact() artifact.Artifact {
	return artifact.Artifact{
		Code:        s.Code,
		Framework:   s.Technology,
		SessionID:   s.ID,
		ImageBase64: s.ImageBase64,
		CreatedAt:   s.CreatedAt,
		Fallback:    s.Fallback,
	}
}
