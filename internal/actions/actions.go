// Package actions translates board gestures and menu picks into the
// single-field mutations the backend expects. Moves and priority changes
// are optimistic: local state is updated as soon as the call is issued
// successfully, and a failed call leaves reconciliation to the caller's
// authoritative reload. Workspace reorder is the exception — it discards
// the optimistic order and refetches on failure.
package actions

import (
	"context"
	"fmt"

	"github.com/Kodestorel007/fun-kanban/internal/api"
	"github.com/Kodestorel007/fun-kanban/internal/board"
)

// TaskUpdater is the slice of the gateway client that task mutations need.
type TaskUpdater interface {
	UpdateTask(ctx context.Context, id api.ID, patch api.TaskPatch) (*api.Task, error)
}

// WorkspaceReorderer is the slice of the gateway client reordering needs.
type WorkspaceReorderer interface {
	ReorderWorkspaces(ctx context.Context, ids []api.ID) error
	Workspaces(ctx context.Context) ([]api.Workspace, error)
}

// DropTarget resolves what a task was dropped onto. When overID names
// another task, the target is that task's column; otherwise overID must be
// a column identifier itself.
func DropTarget(tasks []api.Task, overID string) (string, bool) {
	for _, t := range tasks {
		if t.ID.String() == overID {
			return t.Status, true
		}
	}
	if board.ValidStatus(overID) {
		return overID, true
	}
	return "", false
}

// Move handles a cross-column drop. It returns the updated task list and
// whether a mutation was issued; a drop on the task's own column or on an
// unresolvable target is a no-op. The status change is the only field sent.
// On failure the local list is returned unchanged — no rollback is needed
// because nothing was applied — and the caller should reload.
func Move(ctx context.Context, u TaskUpdater, tasks []api.Task, taskID, overID string) ([]api.Task, bool, error) {
	var task *api.Task
	for i := range tasks {
		if tasks[i].ID.String() == taskID {
			task = &tasks[i]
			break
		}
	}
	if task == nil {
		return tasks, false, nil
	}

	target, ok := DropTarget(tasks, overID)
	if !ok || target == task.Status {
		return tasks, false, nil
	}

	patch := api.TaskPatch{Status: &target}
	if _, err := u.UpdateTask(ctx, api.ID(taskID), patch); err != nil {
		return tasks, false, fmt.Errorf("move task %s to %s: %w", taskID, target, err)
	}

	out := applyStatus(tasks, taskID, target)
	return out, true, nil
}

// priority cycle: low → medium → high → low, one step per click.
var priorityCycle = map[string]string{
	api.PriorityLow:    api.PriorityMedium,
	api.PriorityMedium: api.PriorityHigh,
	api.PriorityHigh:   api.PriorityLow,
}

// NextPriority returns the cycle successor. An unset priority counts as low.
func NextPriority(current string) string {
	next, ok := priorityCycle[current]
	if !ok {
		return priorityCycle[api.PriorityLow]
	}
	return next
}

// CyclePriority advances a task's priority one step and persists it.
func CyclePriority(ctx context.Context, u TaskUpdater, tasks []api.Task, taskID string) ([]api.Task, error) {
	for i := range tasks {
		if tasks[i].ID.String() == taskID {
			return SetPriority(ctx, u, tasks, taskID, NextPriority(tasks[i].Priority))
		}
	}
	return tasks, fmt.Errorf("task %s not found", taskID)
}

// SetPriority issues a single-field priority update and applies it locally.
func SetPriority(ctx context.Context, u TaskUpdater, tasks []api.Task, taskID, priority string) ([]api.Task, error) {
	patch := api.TaskPatch{Priority: &priority}
	if _, err := u.UpdateTask(ctx, api.ID(taskID), patch); err != nil {
		return tasks, fmt.Errorf("set priority of %s: %w", taskID, err)
	}

	out := make([]api.Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		if out[i].ID.String() == taskID {
			out[i].Priority = priority
		}
	}
	return out, nil
}

// Reorder moves the workspace at fromIdx to toIdx, renders the new order
// immediately, then persists the full ordered ID list. A persistence
// failure discards the optimistic order and reloads the authoritative list.
func Reorder(ctx context.Context, r WorkspaceReorderer, ws []api.Workspace, fromIdx, toIdx int) ([]api.Workspace, error) {
	if fromIdx < 0 || fromIdx >= len(ws) || toIdx < 0 || toIdx >= len(ws) || fromIdx == toIdx {
		return ws, nil
	}

	reordered := arrayMove(ws, fromIdx, toIdx)

	ids := make([]api.ID, len(reordered))
	for i, w := range reordered {
		ids[i] = w.ID
	}
	if err := r.ReorderWorkspaces(ctx, ids); err != nil {
		authoritative, loadErr := r.Workspaces(ctx)
		if loadErr != nil {
			return ws, fmt.Errorf("reorder workspaces: %w (reload also failed: %v)", err, loadErr)
		}
		return authoritative, fmt.Errorf("reorder workspaces: %w", err)
	}
	return reordered, nil
}

func arrayMove(ws []api.Workspace, from, to int) []api.Workspace {
	out := make([]api.Workspace, 0, len(ws))
	out = append(out, ws[:from]...)
	out = append(out, ws[from+1:]...)
	out = append(out[:to], append([]api.Workspace{ws[from]}, out[to:]...)...)
	return out
}

func applyStatus(tasks []api.Task, taskID, status string) []api.Task {
	out := make([]api.Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		if out[i].ID.String() == taskID {
			out[i].Status = status
		}
	}
	return out
}
