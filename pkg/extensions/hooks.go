package extensions

import (
	"context"
	"fmt"
	"sync"
)

// HookPoint represents a point in the engine where hooks can be registered
type HookPoint string

const (
	// Command hooks
	HookBeforeCommand  HookPoint = "before_command"
	HookAfterCommand   HookPoint = "after_command"
	HookCommandRefused HookPoint = "command_refused"
	HookCommandFailed  HookPoint = "command_failed"

	// Configuration hooks
	HookRulesReloaded HookPoint = "rules_reloaded"
)

// Hook represents a function that can be executed at a hook point
type Hook func(ctx context.Context, data HookData) error

// HookData is passed to hooks
type HookData struct {
	Command    string                 `json:"command"`
	Operation  string                 `json:"operation"`
	Result     string                 `json:"result,omitempty"`
	Violations int                    `json:"violations,omitempty"`
	Err        error                  `json:"-"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// HookManager manages hooks for extension points
type HookManager struct {
	hooks map[HookPoint][]Hook
	mu    sync.RWMutex
}

// NewHookManager creates a new hook manager
func NewHookManager() *HookManager {
	return &HookManager{
		hooks: make(map[HookPoint][]Hook),
	}
}

// Register registers a hook for a specific hook point
func (m *HookManager) Register(point HookPoint, hook Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hooks[point] = append(m.hooks[point], hook)
}

// Execute runs every hook of a point in registration order, stopping at
// the first failure
func (m *HookManager) Execute(ctx context.Context, point HookPoint, data HookData) error {
	m.mu.RLock()
	hooks := m.hooks[point]
	m.mu.RUnlock()

	for i, hook := range hooks {
		if err := hook(ctx, data); err != nil {
			return fmt.Errorf("hook %d at %s failed: %w", i, point, err)
		}
	}

	return nil
}

// Has reports whether any hook is registered for point
func (m *HookManager) Has(point HookPoint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.hooks[point]) > 0
}

// Clear removes all hooks for a specific hook point
func (m *HookManager) Clear(point HookPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.hooks, point)
}
