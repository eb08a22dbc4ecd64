package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/fparse/internal/types"
)

// debounce merges the burst of events an editor produces on save.
const debounce = 100 * time.Millisecond

// OnIssues sets the callback invoked with the result of each re-check in
// watch mode. Without one, results are only logged.
func (e *Engine) OnIssues(fn func(filename string, issues []tt.Issue)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onIssues = fn
}

// StartWatching re-checks source files under dirs whenever they are
// written. Only files with one of the given extensions are checked.
func (e *Engine) StartWatching(dirs []string, extensions []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isWatching {
		return fmt.Errorf("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}

	for _, dir := range dirs {
		if _, err := addTree(watcher, dir); err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	e.watcher = watcher
	e.watchDirs = dirs
	e.extensions = extensions
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.isWatching = true

	go e.watchLoop(watcher, e.stop, e.done)
	e.logger.Info("watching", zap.Strings("dirs", dirs))
	return nil
}

func (e *Engine) StopWatching() error {
	e.mu.Lock()
	if !e.isWatching {
		e.mu.Unlock()
		return errors.New("not watching")
	}
	e.isWatching = false
	close(e.stop)
	done := e.done
	err := e.watcher.Close()
	e.mu.Unlock()

	<-done
	return err
}

func (e *Engine) watchLoop(w *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			e.handleFileEvent(w, event)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			e.logger.Error("watch error", zap.Error(err))
		}
	}
}

// addTree watches root and every directory below it, and returns the
// files found on the way.
func addTree(w *fsnotify.Watcher, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func (e *Engine) handleFileEvent(w *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			e.watchNewDir(w, event.Name)
			return
		}
	}
	if !e.isWatchedSource(event.Name) {
		return
	}

	time.Sleep(debounce)
	e.recheck(event.Name)
}

// watchNewDir starts watching a directory created after StartWatching.
// Sources already inside it were written before the watch existed, so
// they are checked right away.
func (e *Engine) watchNewDir(w *fsnotify.Watcher, dir string) {
	files, err := addTree(w, dir)
	if err != nil {
		e.logger.Error("error adding directory to watcher", zap.String("dir", dir), zap.Error(err))
	}
	e.logger.Debug("watching new directory", zap.String("dir", dir))

	for _, file := range files {
		if e.isWatchedSource(file) {
			e.recheck(file)
		}
	}
}

func (e *Engine) recheck(filename string) {
	issues, err := e.Run(filename)
	if err != nil {
		e.logger.Error("error checking file", zap.String("file", filename), zap.Error(err))
		return
	}
	if err := e.FlushCache(); err != nil {
		e.logger.Warn("failed to write cache", zap.Error(err))
	}
	e.reportIssues(filename, issues)
}

func (e *Engine) isWatchedSource(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range e.extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func (e *Engine) reportIssues(filename string, issues []tt.Issue) {
	e.mu.Lock()
	fn := e.onIssues
	e.mu.Unlock()

	if fn != nil {
		fn(filename, issues)
	}

	if len(issues) == 0 {
		e.logger.Info("no issues found", zap.String("file", filename))
		return
	}
	e.logger.Info("found issues", zap.String("file", filename), zap.Int("count", len(issues)))
	for _, issue := range issues {
		e.logger.Debug("issue",
			zap.String("rule", issue.Rule),
			zap.Int("line", issue.Start.Line),
			zap.String("message", issue.Message),
		)
	}
}
