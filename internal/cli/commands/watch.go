package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchValidate runs validateOnce, then again after every change to the
// rules, data or grammar file until ctx is cancelled. Validation failures
// do not stop the loop.
func watchValidate(ctx context.Context, cc *CommandContext, opts *ValidateOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range []string{opts.Rules, opts.Data, opts.Grammar} {
		if p == "" || !exists(p) {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	if len(watched) == 0 {
		return fmt.Errorf("nothing to watch: %s does not exist", opts.Rules)
	}
	// Watch parent directories: editors replace files on save.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	runOnce := func() {
		_, err := validateOnce(ctx, cc, opts)
		var failed *ValidationFailedError
		if err != nil && !errors.As(err, &failed) {
			cc.Renderer.Error(err.Error())
		}
	}

	runOnce()
	notice := func() {
		_, _ = fmt.Fprintln(cc.Renderer.ErrWriter(), cc.Renderer.Styles().Muted.Render("Watching for changes (Ctrl+C to stop)"))
	}
	notice()

	debounce := cc.Cfg.WatchDebounce
	trigger := make(chan string, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !watched[name] {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case trigger <- name:
				default:
				}
			})

		case name := <-trigger:
			cc.Logger.Debug("change detected", slog.String("file", name))
			_, _ = fmt.Fprintf(cc.Renderer.ErrWriter(), "\nChange detected: %s\n", filepath.Base(name))
			runOnce()
			notice()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}
