package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(t.TempDir(), true)
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager(t)

	art := artifact.New("function App(){return null}", artifact.React, "")
	sess, err := m.Create(art)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sess.ID, "sess_"))
	assert.Equal(t, artifact.React, sess.Technology)

	got, ok := m.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, sess.Code, got.Code)
}

func TestGetUnknown(t *testing.T) {
	m := newTestManager(t)

	_, ok := m.Get("sess_missing")
	assert.False(t, ok)
}

func TestAppendMessagesSanitizes(t *testing.T) {
	m := newTestManager(t)

	sess, err := m.Create(artifact.New("code", artifact.HTML, ""))
	require.NoError(t, err)

	updated, err := m.AppendMessages(sess.ID,
		Message{Role: "user", Content: `make it <script>alert(1)</script> blue`},
		Message{Role: "assistant", Content: "Done, it is blue now."},
	)
	require.NoError(t, err)

	require.Len(t, updated.Messages, 2)
	assert.Equal(t, "make it  blue", updated.Messages[0].Content)
	assert.NotEmpty(t, updated.Messages[0].ID)
	assert.Equal(t, "Done, it is blue now.", updated.Messages[1].Content)
}

func TestUpdateCodeClearsFallback(t *testing.T) {
	m := newTestManager(t)

	sess, err := m.Create(artifact.NewFallback("", "gateway down"))
	require.NoError(t, err)
	require.True(t, sess.Fallback)

	updated, err := m.UpdateCode(sess.ID, "function App(){return 1}", artifact.React)
	require.NoError(t, err)

	assert.False(t, updated.Fallback)
	assert.Equal(t, artifact.React, updated.Technology)
	assert.Equal(t, "function App(){return 1}", updated.Artifact().Code)
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)

	sess, err := m.Create(artifact.New("code", artifact.React, ""))
	require.NoError(t, err)

	require.NoError(t, m.Delete(sess.ID))

	_, ok := m.Get(sess.ID)
	assert.False(t, ok)

	// Idempotent: deleting again is not an error.
	assert.NoError(t, m.Delete(sess.ID))
}

func TestRestoreAcrossManagers(t *testing.T) {
	dir := t.TempDir()

	first := NewManager(dir, true)
	sess, err := first.Create(artifact.New("persisted code", artifact.Vue, ""))
	require.NoError(t, err)
	_, err = first.AppendMessages(sess.ID, Message{Role: "user", Content: "hello"})
	require.NoError(t, err)

	second := NewManager(dir, true)
	require.NoError(t, second.Restore())

	got, ok := second.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "persisted code", got.Code)
	assert.Equal(t, artifact.Vue, got.Technology)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestRestoreSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()

	first := NewManager(dir, true)
	sess, err := first.Create(artifact.New("good", artifact.React, ""))
	require.NoError(t, err)

	writeGarbage(t, dir)

	second := NewManager(dir, true)
	require.NoError(t, second.Restore())

	assert.Equal(t, 1, second.Count())
	_, ok := second.Get(sess.ID)
	assert.True(t, ok)
}

func TestEphemeralManagerNeverTouchesDisk(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, false)

	sess, err := m.Create(artifact.New("code", artifact.React, ""))
	require.NoError(t, err)

	_, ok := m.Get(sess.ID)
	assert.True(t, ok)

	entries, err := readDirNames(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// Writers swap in clones rather than mutating stored sessions, so chat
// turns racing against listings and reads must be safe under -race.
func TestConcurrentChatAndReads(t *testing.T) {
	m := NewManager(t.TempDir(), false)

	sess, err := m.Create(artifact.New("function App(){return null}", artifact.React, ""))
	require.NoError(t, err)

	const turns = 50
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < turns; i++ {
			_, err := m.AppendMessages(sess.ID, Message{Role: "user", Content: "again"})
			assert.NoError(t, err)
			_, err = m.UpdateCode(sess.ID, "function App(){return 1}", artifact.React)
			assert.NoError(t, err)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < turns; i++ {
				for _, meta := range m.List() {
					_ = meta.MessageCount
				}
				if got, ok := m.Get(sess.ID); ok {
					_ = len(got.Messages)
					_ = got.Code
				}
			}
		}()
	}

	wg.Wait()

	got, ok := m.Get(sess.ID)
	require.True(t, ok)
	assert.Len(t, got.Messages, turns)
}

func TestGetReturnsStableSnapshot(t *testing.T) {
	m := newTestManager(t)

	sess, err := m.Create(artifact.New("code", artifact.React, ""))
	require.NoError(t, err)

	before, ok := m.Get(sess.ID)
	require.True(t, ok)

	_, err = m.AppendMessages(sess.ID, Message{Role: "user", Content: "hello"})
	require.NoError(t, err)

	// The pointer handed out earlier never sees the later mutation.
	assert.Empty(t, before.Messages)

	after, ok := m.Get(sess.ID)
	require.True(t, ok)
	assert.Len(t, after.Messages, 1)
}

func TestList(t *testing.T) {
	m := newTestManager(t)

	for i := 0; i < 3; i++ {
		_, err := m.Create(artifact.New("code", artifact.React, ""))
		require.NoError(t, err)
	}

	assert.Len(t, m.List(), 3)
	assert.Equal(t, 3, m.Count())
}

func writeGarbage(t *testing.T, dir string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, "sess_broken"+fileSuffix), []byte("not gzip"), 0o644)
	require.NoError(t, err)
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
