package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"graphcore/domain/rules"
	"graphcore/pkg/extensions"
	"graphcore/pkg/observability"
)

// ReloadListener is told about every reload attempt, with the new rule set
// or the error that kept the old one active
type ReloadListener func(*rules.RuleSet, error)

// RulesWatcher reloads a rule file into a rules.Reloadable whenever the
// file changes. A file that fails to load leaves the current rules active.
type RulesWatcher struct {
	path      string
	target    *rules.Reloadable
	debounce  time.Duration
	watcher   *fsnotify.Watcher
	logger    *zap.Logger
	collector *observability.Collector
	hooks     *extensions.HookManager

	mu       sync.RWMutex
	onReload []ReloadListener

	stopCh    chan struct{}
	done      chan struct{}
	started   bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewRulesWatcher loads path into target and prepares to watch it
func NewRulesWatcher(path string, target *rules.Reloadable, debounce time.Duration, logger *zap.Logger) (*RulesWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rs, err := LoadRuleSet(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial rules: %w", err)
	}
	target.Swap(rs)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors often replace the file, so the directory is watched as well
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch rule file: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("Failed to watch rule directory", zap.Error(err))
	}

	return &RulesWatcher{
		path:     path,
		target:   target,
		debounce: debounce,
		watcher:  watcher,
		logger:   logger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// WithMetrics records every reload attempt on collector
func (w *RulesWatcher) WithMetrics(collector *observability.Collector) *RulesWatcher {
	w.collector = collector
	return w
}

// WithHooks runs the rules_reloaded hooks after every reload attempt
func (w *RulesWatcher) WithHooks(hooks *extensions.HookManager) *RulesWatcher {
	w.hooks = hooks
	return w
}

// OnReload registers fn to be called after every reload attempt
func (w *RulesWatcher) OnReload(fn ReloadListener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = append(w.onReload, fn)
}

// Start begins watching for changes. Calls after the first, or after Stop,
// do nothing.
func (w *RulesWatcher) Start() {
	w.startOnce.Do(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		select {
		case <-w.stopCh:
			return
		default:
		}
		w.started = true
		go w.watchLoop()
		w.logger.Info("Rules watcher started", zap.String("path", w.path))
	})
}

// Stop stops watching and waits for the loop to exit. It is safe to call on
// a watcher that was never started.
func (w *RulesWatcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		close(w.stopCh)
		started := w.started
		w.mu.Unlock()

		w.watcher.Close()
		if started {
			<-w.done
		}
		w.logger.Info("Rules watcher stopped")
	})
}

func (w *RulesWatcher) watchLoop() {
	defer close(w.done)

	var debounceTimer *time.Timer
	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				w.Reload()
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// Reload reads the rule file now
func (w *RulesWatcher) Reload() error {
	rs, err := LoadRuleSet(w.path)
	if err != nil {
		w.logger.Error("Invalid rule file, keeping current rules", zap.String("path", w.path), zap.Error(err))
	} else {
		w.target.Swap(rs)
		w.logger.Info("Rules reloaded",
			zap.String("rule_set", rs.Name),
			zap.Int("cardinality", len(rs.Cardinality)),
			zap.Int("containment", len(rs.Containment)),
			zap.Int("connection", len(rs.Connection)),
		)
	}

	if w.collector != nil {
		w.collector.RecordRuleReload(err)
	}
	if w.hooks != nil {
		data := extensions.HookData{Operation: "reload", Err: err, Metadata: map[string]interface{}{"path": w.path}}
		if hookErr := w.hooks.Execute(context.Background(), extensions.HookRulesReloaded, data); hookErr != nil {
			w.logger.Warn("Rules reload hook failed", zap.Error(hookErr))
		}
	}

	w.mu.RLock()
	listeners := make([]ReloadListener, len(w.onReload))
	copy(listeners, w.onReload)
	w.mu.RUnlock()
	for _, fn := range listeners {
		fn(rs, err)
	}
	return err
}
