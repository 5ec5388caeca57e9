// Package hook fans progression events out to registered handlers after the
// transaction that produced them has committed.
package hook

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrInterrupt signals that a handler wants to stop further processing.
var ErrInterrupt = errors.New("hook interrupted")

// HookFn is a hook handler function.
// Returns (data, nil) to continue, or (data, ErrInterrupt) to stop.
// Any other error is logged and the next handler still runs.
type HookFn func(ctx context.Context, event string, data interface{}) (interface{}, error)

type hookEntry struct {
	priority int
	fn       HookFn
	name     string
}

// HookCenter manages event hook registrations.
type HookCenter struct {
	mu     sync.RWMutex
	hooks  map[string][]*hookEntry
	logger *zap.Logger
}

// NewHookCenter creates a new HookCenter. A nil logger discards handler
// failures.
func NewHookCenter(logger *zap.Logger) *HookCenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HookCenter{hooks: make(map[string][]*hookEntry), logger: logger}
}

// Register adds a HookFn for the given event with the given priority (lower runs first).
// Handlers with equal priority run in registration order.
func (hc *HookCenter) Register(event string, priority int, name string, fn HookFn) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	entries := append(hc.hooks[event], &hookEntry{priority: priority, fn: fn, name: name})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})
	hc.hooks[event] = entries
}

// Unregister removes all hooks with the given name for the given event.
func (hc *HookCenter) Unregister(event, name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	entries := hc.hooks[event]
	n := 0
	for _, e := range entries {
		if e.name != name {
			entries[n] = e
			n++
		}
	}
	hc.hooks[event] = entries[:n]
}

// Trigger executes all registered hooks for event in priority order.
// Data flows through each handler. A handler that fails or panics is
// logged and skipped; ErrInterrupt stops the chain and is returned.
func (hc *HookCenter) Trigger(ctx context.Context, event string, data interface{}) (interface{}, error) {
	hc.mu.RLock()
	entries := make([]*hookEntry, len(hc.hooks[event]))
	copy(entries, hc.hooks[event])
	hc.mu.RUnlock()

	for _, e := range entries {
		out, err := hc.call(ctx, e, event, data)
		if errors.Is(err, ErrInterrupt) {
			return out, err
		}
		if err != nil {
			hc.logger.Warn("hook failed",
				zap.String("event", event),
				zap.String("hook", e.name),
				zap.Error(err))
			continue
		}
		data = out
	}
	return data, nil
}

func (hc *HookCenter) call(ctx context.Context, e *hookEntry, event string, data interface{}) (out interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			hc.logger.Error("hook panicked",
				zap.String("event", event),
				zap.String("hook", e.name),
				zap.Any("recover", r))
			out, err = data, nil
		}
	}()
	return e.fn(ctx, event, data)
}

// Progression events. Payloads are the result structs of the component
// that fires them.
const (
	AfterXPGranted       = "after_xp_granted"       // xp.Result
	OnLevelUp            = "on_level_up"            // xp.Result
	OnQuestCompleted     = "on_quest_completed"     // quest.Completion
	OnAchievementGranted = "on_achievement_granted" // achievement.Granted
	OnAchievementClaimed = "on_achievement_claimed" // achievement.ClaimResult
	OnFrameUnlocked      = "on_frame_unlocked"      // frame.Unlocked
)
