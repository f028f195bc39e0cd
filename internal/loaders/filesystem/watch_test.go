package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/loaders"
)

func nextChange(t *testing.T, ch <-chan domain.RuleChange, want domain.ChangeType) domain.RuleChange {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			require.True(t, ok, "channel closed early")
			if c.Type == want {
				return c
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s event", want)
		}
	}
}

func TestLoader_Watch(t *testing.T) {
	t.Run("reports new documents", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := New(nil).Watch(ctx, dirSource(dir))
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(filepath.Join(dir, "new.yaml"), []byte("id: new\ndescription: d\n"), 0o600)
		}()

		change := nextChange(t, changes, domain.ChangeUpserted)
		require.NotNil(t, change.Rule)
		assert.Equal(t, "new", change.Rule.ID)
		assert.Equal(t, filepath.Join(dir, "new.yaml"), change.Origin)
	})

	t.Run("reports deletions", func(t *testing.T) {
		dir := t.TempDir()
		path := writeRule(t, dir, "gone.yaml", "gone")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := New(nil).Watch(ctx, dirSource(dir))
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.Remove(path)
		}()

		change := nextChange(t, changes, domain.ChangeRemoved)
		assert.Equal(t, path, change.Origin)
	})

	t.Run("closes on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		changes, err := New(nil).Watch(ctx, dirSource(t.TempDir()))
		require.NoError(t, err)

		cancel()
		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("channel not closed after cancel")
		}
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := New(nil).Watch(context.Background(), domain.SourceDescriptor{LoaderType: "directory"})
		assert.ErrorIs(t, err, domain.ErrInvalidSettings)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := New(nil).Watch(context.Background(), dirSource(filepath.Join(t.TempDir(), "nope")))
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		op         fsnotify.Op
		wantChange bool
		wantType   domain.ChangeType
	}{
		{"create rule", "a.yaml", "id: a\ndescription: d\n", fsnotify.Create, true, domain.ChangeUpserted},
		{"write rule", "a.yaml", "id: a\ndescription: d\n", fsnotify.Write, true, domain.ChangeUpserted},
		{"write and chmod", "a.yaml", "id: a\ndescription: d\n", fsnotify.Write | fsnotify.Chmod, true, domain.ChangeUpserted},
		{"remove", "a.yaml", "", fsnotify.Remove, true, domain.ChangeRemoved},
		{"rename", "a.yaml", "", fsnotify.Rename, true, domain.ChangeRemoved},
		{"chmod only", "a.yaml", "id: a\ndescription: d\n", fsnotify.Chmod, false, 0},
		{"half-written document", "a.yaml", "id: a\n", fsnotify.Write, false, 0},
		{"hidden file", ".a.yaml", "id: a\ndescription: d\n", fsnotify.Create, false, 0},
		{"non-matching file", "a.txt", "id: a\ndescription: d\n", fsnotify.Create, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			}

			change := New(nil).handleFsEvent(context.Background(), fsnotify.Event{Name: path, Op: tt.op}, loaders.DefaultPatterns)

			if !tt.wantChange {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.wantType, change.Type)
			assert.Equal(t, path, change.Origin)
			if tt.wantType == domain.ChangeUpserted {
				require.NotNil(t, change.Rule)
				assert.Equal(t, "a", change.Rule.ID)
			}
		})
	}
}
