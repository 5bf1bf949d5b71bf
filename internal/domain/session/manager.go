package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SnapUI/backend/internal/shared/id"
)

const fileSuffix = ".json.gz"

// Manager handles session lifecycle and persistence.
type Manager struct {
	sessions   sync.Map
	ids        *id.Generator
	sanitizer  *bluemonday.Policy
	dir        string
	persistent bool
	logger     *logging.Logger
	metrics    *monitoring.Metrics

	// Serializes writers. Stored sessions are never mutated in place:
	// writers clone, mutate the clone, and swap it into the map, so Get
	// and List can hand out pointers without holding a lock.
	mu sync.Mutex
}

// NewManager creates a session manager. When persistent is false nothing
// touches the disk and sessions die with the process.
func NewManager(dir string, persistent bool) *Manager {
	return &Manager{
		ids:        id.NewGenerator(),
		sanitizer:  bluemonday.StrictPolicy(),
		dir:        dir,
		persistent: persistent,
		logger:     logging.NewDefault(),
	}
}

// WithLogger sets the logger.
func (m *Manager) WithLogger(logger *logging.Logger) *Manager {
	m.logger = logger
	return m
}

// WithMetrics enables metrics collection.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Create stores a new session around a generated artifact.
func (m *Manager) Create(art artifact.Artifact) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:          m.ids.GenerateWithPrefix(id.SessionPrefix),
		Technology:  art.Framework,
		ImageBase64: art.ImageBase64,
		Code:        art.Code,
		Fallback:    art.Fallback,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m.sessions.Store(sess.ID, sess)
	m.recordCount()

	if err := m.persist(sess); err != nil {
		return nil, err
	}

	return sess, nil
}

// Get returns a session by ID.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	if cached, ok := m.sessions.Load(sessionID); ok {
		return cached.(*Session), true
	}

	// Cache miss: try disk, covers sessions from a previous process that
	// Restore did not see because the manager was built lazily.
	sess, err := m.readFile(m.path(sessionID))
	if err != nil {
		return nil, false
	}

	m.sessions.Store(sess.ID, sess)
	m.recordCount()
	return sess, true
}

// List returns metadata for all known sessions.
func (m *Manager) List() []Metadata {
	var out []Metadata
	m.sessions.Range(func(_, value interface{}) bool {
		out = append(out, value.(*Session).ToMetadata())
		return true
	})
	return out
}

// Delete removes a session from cache and disk.
func (m *Manager) Delete(sessionID string) error {
	m.sessions.Delete(sessionID)
	m.recordCount()

	if !m.persistent {
		return nil
	}
	if err := os.Remove(m.path(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session file: %w", err)
	}
	return nil
}

// AppendMessages adds chat turns to a session. Content is sanitized on
// ingest so stored transcripts never carry markup.
func (m *Manager) AppendMessages(sessionID string, messages ...Message) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	next := sess.clone()
	for _, msg := range messages {
		msg.Content = strings.TrimSpace(m.sanitizer.Sanitize(msg.Content))
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
		next.Messages = append(next.Messages, msg)
	}
	next.UpdatedAt = time.Now()

	if err := m.persist(next); err != nil {
		return nil, err
	}

	m.sessions.Store(next.ID, next)
	return next, nil
}

// UpdateCode replaces the session's artifact code. Only the generation and
// chat flows call this; viewport switches never do.
func (m *Manager) UpdateCode(sessionID string, code string, fw artifact.Framework) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	next := sess.clone()
	next.Code = code
	next.Technology = fw
	next.Fallback = false
	next.UpdatedAt = time.Now()

	if err := m.persist(next); err != nil {
		return nil, err
	}

	m.sessions.Store(next.ID, next)
	return next, nil
}

// Restore loads all persisted sessions into the cache. Corrupt files are
// skipped with a warning instead of failing startup.
func (m *Manager) Restore() error {
	if !m.persistent {
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session dir: %w", err)
	}

	restored := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}

		sess, err := m.readFile(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			m.logger.Warn("skipping unreadable session file",
				zap.String("file", entry.Name()),
				zap.Error(err),
			)
			continue
		}

		m.sessions.Store(sess.ID, sess)
		restored++
		if m.metrics != nil {
			m.metrics.IncSessionsRestored()
		}
	}

	m.recordCount()
	m.logger.Info("sessions restored", zap.Int("count", restored))
	return nil
}

// Count returns the number of cached sessions.
func (m *Manager) Count() int {
	total := 0
	m.sessions.Range(func(_, _ interface{}) bool {
		total++
		return true
	})
	return total
}

// persist writes one session to disk as gzip-compressed JSON.
func (m *Manager) persist(sess *Session) error {
	if !m.persistent {
		return nil
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// Write to a temp file and rename so a crash never leaves a truncated
	// session behind.
	tmp, err := os.CreateTemp(m.dir, "session-*")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	gz := gzip.NewWriter(tmp)
	if _, err := gz.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("compress session: %w", err)
	}
	if err := gz.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("compress session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	if err := os.Rename(tmp.Name(), m.path(sess.ID)); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	if m.metrics != nil {
		m.metrics.IncSessionsSaved()
	}
	return nil
}

// readFile loads and decompresses one session file.
func (m *Manager) readFile(path string) (*Session, error) {
	if !m.persistent {
		return nil, os.ErrNotExist
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompress session: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.ID == "" {
		return nil, fmt.Errorf("session file %s has empty ID", filepath.Base(path))
	}

	return &sess, nil
}

func (m *Manager) path(sessionID string) string {
	return filepath.Join(m.dir, sessionID+fileSuffix)
}

func (m *Manager) recordCount() {
	if m.metrics != nil {
		m.metrics.SetSessionsActive(m.Count())
	}
}
