package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ecosystem.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"apps": []}`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, &WatchOpts{
			Path:     path,
			OnChange: func(p string) { changes <- p },
			Writer:   io.Discard,
		})
	}()

	// Give the watcher time to register before writing.
	var got string
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for got == "" {
		select {
		case got = <-changes:
		case <-tick.C:
			require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), nil, 0o644))
			require.NoError(t, os.WriteFile(path, []byte(`{"apps": [] }`), 0o644))
		case <-deadline:
			t.Fatal("no change reported")
		}
	}
	assert.Equal(t, path, got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
