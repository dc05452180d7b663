package ml

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

const artifactChangeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// WatchArtifact calls onChange whenever the artifact at path is modified,
// replaced or removed on disk. It never reloads: a loaded classifier stays
// as it is until the process restarts. Watching stops when ctx is done.
func WatchArtifact(ctx context.Context, path string, onChange func(fsnotify.Op), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	target, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return err
	}
	// editors and deploy tools replace files, so watch the directory
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || name != target {
					continue
				}
				if event.Op&artifactChangeOps != 0 && onChange != nil {
					onChange(event.Op)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()
	return nil
}
