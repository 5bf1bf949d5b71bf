package sandbox

import (
	"time"
)

// Config defines preflight sandbox configuration
type Config struct {
	Timeout       time.Duration // Execution timeout per probe
	EnableConsole bool          // Capture console.log/warn/error
	StubDOM       bool          // Install inert document/window stubs
}

// Result holds a probe result
type Result struct {
	Value    interface{}   // Completion value of the script
	Console  []LogEntry    // Captured console output
	Duration time.Duration // Execution time
	Error    error         // Runtime error, if any
}

// LogEntry represents captured console output
type LogEntry struct {
	Level   string    // log, warn, error
	Message string    // Log message
	Time    time.Time // Timestamp
}

// DefaultConfig returns the configuration used by the preview preflight
func DefaultConfig() Config {
	return Config{
		Timeout:       2 * time.Second,
		EnableConsole: true,
		StubDOM:       true,
	}
}
