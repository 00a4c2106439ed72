// package service implements business logic for the application
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cirocosta/todopage/internal/identity"
	"github.com/cirocosta/todopage/internal/model"
	"github.com/cirocosta/todopage/internal/repository"
)

// TodosPath is the path of the page showing the todo list
const TodosPath = "/todos"

// Invalidator marks a rendered page as stale
type Invalidator interface {
	InvalidatePath(ctx context.Context, path string) error
}

// Options tunes behavior that differs between identity modes
type Options struct {
	// DropEmptyTitles turns an add with an empty title into a no-op. The
	// fixed identity mode drops them; the session mode stores them as given.
	DropEmptyTitles bool
}

// OptionsFor returns the options matching an identity mode
func OptionsFor(mode identity.Mode) Options {
	return Options{DropEmptyTitles: mode == identity.ModeFixed}
}

// TodoService handles business logic for todo operations
type TodoService struct {
	repo        repository.TodoRepository
	invalidator Invalidator
	opts        Options
	logger      *slog.Logger
}

// NewTodoService creates a new todo service. A nil logger uses slog.Default.
func NewTodoService(repo repository.TodoRepository, invalidator Invalidator, opts Options, logger *slog.Logger) *TodoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoService{
		repo:        repo,
		invalidator: invalidator,
		opts:        opts,
		logger:      logger,
	}
}

// List returns the todos of userID, newest first. Store failures are logged
// and yield an empty list.
func (s *TodoService) List(ctx context.Context, userID string) []model.Todo {
	todos, _ := s.ListPage(ctx, userID)
	return todos
}

// ListPage is List for callers that keep the result around. degraded is set
// when a store failure was replaced by the empty list.
func (s *TodoService) ListPage(ctx context.Context, userID string) (todos []model.Todo, degraded bool) {
	if userID == "" {
		return []model.Todo{}, false
	}

	todos, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "list todos", "user_id", userID, "error", err)
		return []model.Todo{}, true
	}
	if todos == nil {
		s.logger.ErrorContext(ctx, "list todos returned no data", "user_id", userID)
		return []model.Todo{}, true
	}

	return todos, false
}

// Add stores a todo titled title for userID and reports whether anything was
// written
func (s *TodoService) Add(ctx context.Context, userID, title string) (bool, error) {
	if userID == "" {
		return false, identity.ErrUnauthenticated
	}
	if title == "" && s.opts.DropEmptyTitles {
		return false, nil
	}

	if _, err := s.repo.Insert(ctx, model.Todo{Title: title, UserID: userID}); err != nil {
		return false, fmt.Errorf("add todo: %w", err)
	}

	s.invalidate(ctx)
	return true, nil
}

// Toggle writes !currentIsDone to the todo id owned by userID. currentIsDone
// is the value the caller last saw, so two toggles from the same stale view
// both write the same value. A todo owned by someone else, or a missing one,
// is left untouched without error.
func (s *TodoService) Toggle(ctx context.Context, userID string, id int64, currentIsDone bool) error {
	if userID == "" {
		return identity.ErrUnauthenticated
	}

	affected, err := s.repo.SetDone(ctx, userID, id, !currentIsDone)
	if err != nil {
		return fmt.Errorf("toggle todo %d: %w", id, err)
	}
	s.logger.DebugContext(ctx, "toggle todo", "user_id", userID, "id", id, "is_done", !currentIsDone, "affected", affected)

	s.invalidate(ctx)
	return nil
}

func (s *TodoService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidatePath(ctx, TodosPath); err != nil {
		s.logger.ErrorContext(ctx, "invalidate page", "path", TodosPath, "error", err)
	}
}
