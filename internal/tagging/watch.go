package tagging

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/notion-nlp/internal/logger"
)

// reloadDelay debounces bursts of writes from editors.
const reloadDelay = 200 * time.Millisecond

// WatchRules loads the rules file and reloads it whenever it changes,
// until ctx is cancelled. The parent directory is watched so that editors
// replacing the file are noticed. Reload failures are logged and the
// previous rules stay in effect.
func (t *Tagger) WatchRules(ctx context.Context, path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch rules: %w", err)
	}
	if err := t.reload(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch rules: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch rules: %w", err)
	}

	go t.watchLoop(ctx, watcher, path)
	logger.Debug("Watching tag rules %s", path)
	return nil
}

func (t *Tagger) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer watcher.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, func() {
				if err := t.reload(path); err != nil {
					logger.Warn("Keeping previous tag rules: %v", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Tag rules watcher: %v", err)
		}
	}
}

func (t *Tagger) reload(path string) error {
	rules, err := LoadRules(path)
	if err != nil {
		return err
	}
	return t.SetRules(rules)
}
