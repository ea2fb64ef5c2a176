package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

type WatchOpts struct {
	// Path is the file to watch.
	Path string
	// OnChange is called after every write to, or re-creation of, Path.
	OnChange func(path string)
	Writer   io.Writer
}

// Watch calls opts.OnChange whenever the watched file changes, until ctx is
// done. It watches the parent directory so editors that replace the file on
// save are still seen.
func Watch(ctx context.Context, opts *WatchOpts) error {
	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return errors.WithStack(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WithStack(err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.WithStack(err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				opts.OnChange(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(opts.Writer, "error: %s\n", err)
		}
	}
}
