package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New("", time.Second, func() {}, nil)
	assert.Error(t, err)

	_, err = New("corpus.json", time.Second, nil, nil)
	assert.Error(t, err)
}

func TestRelevant_OnlyWatchedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")
	w, err := New(path, time.Second, func() {}, nil)
	require.NoError(t, err)

	assert.True(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	assert.True(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Rename}))
	assert.False(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{
		Name: filepath.Join(dir, "other.json"), Op: fsnotify.Write,
	}))
}

func TestRun_DebouncesWriteBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	var reloads atomic.Int32
	w, err := New(path, 50*time.Millisecond, func() { reloads.Add(1) }, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)

	// A burst of writes within the debounce window collapses to one
	// reload.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return reloads.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// No further events: the count stays at one.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())

	cancel()
	<-done
}
