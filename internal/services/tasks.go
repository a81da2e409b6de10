// Package services – task registry
//
// Delayed tasks and fax on-complete hooks are dispatched by name through a
// registry, which keeps the persisted descriptor a plain (name, args) pair
// and the execution side injectable in tests.
package services

import (
	"context"
	"fmt"
	"sync"
)

// Task names dispatched through the registry.
const (
	TaskLEOFaxSent        = "absentee.leo_fax_sent"
	TaskActionFollowup    = "action.followup"
	TaskRefreshRegionOVBM = "absentee.refresh_region_ovbm"
)

// TaskFunc executes one named task with its decoded arguments.
type TaskFunc func(ctx context.Context, args []any) error

// Registry maps task names to handlers. It implements TaskRunner and is safe
// for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]TaskFunc
}

// NewRegistry constructs an empty task registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]TaskFunc)}
}

// Register binds a handler to a task name, replacing any previous binding.
func (r *Registry) Register(name string, fn TaskFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = fn
}

// Run implements TaskRunner.
func (r *Registry) Run(ctx context.Context, name string, args []any) error {
	r.mu.RLock()
	fn, ok := r.tasks[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return fn(ctx, args)
}

// stringArg extracts args[i] as a string, with a descriptive error for the
// task log when the stored payload does not match the handler's expectation.
func stringArg(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("missing argument %d", i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d is %T, want string", i, args[i])
	}
	return s, nil
}
