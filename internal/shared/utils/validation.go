package utils

import (
	"fmt"
	"strings"
)

const (
	// MaxCodeSize bounds generated code payloads (1 MB).
	MaxCodeSize = 1 * 1024 * 1024
	// MaxMessageSize bounds chat messages (32 KB).
	MaxMessageSize = 32 * 1024
	// MaxImageSize bounds uploaded screenshots (10 MB).
	MaxImageSize = 10 * 1024 * 1024
	// MaxIDLength bounds identifier strings.
	MaxIDLength = 128
)

// ValidateID checks an identifier string for presence and sane length.
func ValidateID(id, field string, required bool) error {
	if id == "" {
		if required {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%s exceeds %d characters", field, MaxIDLength)
	}
	if strings.ContainsAny(id, " \t\n/\\") {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	return nil
}

// ValidateMessage checks a chat message for presence and size.
func ValidateMessage(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return fmt.Errorf("message is required")
	}
	if len(msg) > MaxMessageSize {
		return fmt.Errorf("message exceeds %d bytes", MaxMessageSize)
	}
	return nil
}

// ValidateCode checks a generated code payload for size. Empty code is
// valid: the pipeline treats it as "nothing to render", never as an error.
func ValidateCode(code string) error {
	if len(code) > MaxCodeSize {
		return fmt.Errorf("code exceeds %d bytes", MaxCodeSize)
	}
	return nil
}
