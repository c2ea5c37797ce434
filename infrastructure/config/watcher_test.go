package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphcore/domain/rules"
	"graphcore/pkg/extensions"
	"graphcore/pkg/observability"
)

func writeRules(t *testing.T, path, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
}

func TestRulesWatcher_LoadsInitialRules(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, "name: first\n")
	target := rules.NewReloadable(nil)

	// Act
	w, err := NewRulesWatcher(path, target, 10*time.Millisecond, nil)

	// Assert
	require.NoError(t, err)
	defer w.Stop()
	assert.Equal(t, "first", target.Current().Name)
}

func TestRulesWatcher_InvalidInitialFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, "cardinality: []\n")

	// Act
	w, err := NewRulesWatcher(path, rules.NewReloadable(nil), 0, nil)

	// Assert
	assert.Nil(t, w)
	assert.Error(t, err)
}

func TestRulesWatcher_Reload(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, "name: first\n")
	target := rules.NewReloadable(nil)
	collector := observability.NewCollector("graphcore")
	hooks := extensions.NewHookManager()
	var hookCalls int
	hooks.Register(extensions.HookRulesReloaded, func(context.Context, extensions.HookData) error {
		hookCalls++
		return nil
	})
	w, err := NewRulesWatcher(path, target, 0, nil)
	require.NoError(t, err)
	defer w.Stop()
	w.WithMetrics(collector).WithHooks(hooks)

	// Act
	writeRules(t, path, "name: second\n")
	okErr := w.Reload()
	writeRules(t, path, "name: [broken\n")
	badErr := w.Reload()

	// Assert
	assert.NoError(t, okErr)
	assert.Error(t, badErr)
	assert.Equal(t, "second", target.Current().Name)
	assert.Equal(t, 2, hookCalls)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.RuleReloads.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.RuleReloads.WithLabelValues("failure")))
}

func TestRulesWatcher_WatchesFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, "name: first\n")
	target := rules.NewReloadable(nil)
	w, err := NewRulesWatcher(path, target, 20*time.Millisecond, nil)
	require.NoError(t, err)
	reloaded := make(chan string, 16)
	w.OnReload(func(rs *rules.RuleSet, err error) {
		if err == nil {
			reloaded <- rs.Name
		}
	})
	w.Start()
	defer w.Stop()

	// Act
	writeRules(t, path, "name: second\n")

	// Assert
	select {
	case name := <-reloaded:
		assert.Equal(t, "second", name)
	case <-time.After(5 * time.Second):
		t.Fatal("rule file change was not picked up")
	}
	assert.Eventually(t, func() bool {
		return target.Current().Name == "second"
	}, time.Second, 10*time.Millisecond)
}

// stopsWithin fails the test when stop does not return in time
func stopsWithin(t *testing.T, stop func(), timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("Stop did not return")
	}
}

func TestRulesWatcher_Stop(t *testing.T) {
	tests := []struct {
		name string
		run  func(w *RulesWatcher)
	}{
		{
			name: "never started",
			run:  func(w *RulesWatcher) { w.Stop() },
		},
		{
			name: "started",
			run: func(w *RulesWatcher) {
				w.Start()
				w.Stop()
			},
		},
		{
			name: "twice",
			run: func(w *RulesWatcher) {
				w.Start()
				w.Stop()
				w.Stop()
			},
		},
		{
			name: "start after stop",
			run: func(w *RulesWatcher) {
				w.Stop()
				w.Start()
				w.Stop()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			path := filepath.Join(t.TempDir(), "rules.yaml")
			writeRules(t, path, "name: first\n")
			w, err := NewRulesWatcher(path, rules.NewReloadable(nil), 10*time.Millisecond, nil)
			require.NoError(t, err)

			// Act & Assert
			stopsWithin(t, func() { tt.run(w) }, 5*time.Second)
		})
	}
}
