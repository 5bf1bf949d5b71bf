// Package testutil provides testing utilities and helpers for backend tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
	"github.com/GriffinCanCode/SnapUI/backend/internal/generation"
)

// MockGenerationClient is a mock implementation of generation.Client.
type MockGenerationClient struct {
	mock.Mock
}

// Generate mocks the gateway call.
func (m *MockGenerationClient) Generate(ctx context.Context, req generation.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// NewMockGenerationClient creates a mock client that replies with the
// given code in a fenced block by default.
func NewMockGenerationClient(t *testing.T, code string) *MockGenerationClient {
	t.Helper()
	m := new(MockGenerationClient)

	m.On("Generate", mock.Anything, mock.Anything).
		Return("```jsx\n"+code+"\n```", nil).
		Maybe()

	return m
}

// CreateTestArtifact creates an artifact with default values.
func CreateTestArtifact(t *testing.T, code string) artifact.Artifact {
	t.Helper()
	return artifact.New(code, artifact.React, "sess_test")
}

// PNGBytes returns a minimal byte sequence that detects as image/png.
// Only the signature matters for content sniffing; the payload is inert.
func PNGBytes(t *testing.T) []byte {
	t.Helper()
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
}
