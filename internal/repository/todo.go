// package repository provides data access interfaces and implementations
package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cirocosta/todopage/internal/model"
)

// TodoRepository defines the interface for todo data access. Every
// operation is scoped to a single owner.
type TodoRepository interface {
	// ListByUser returns the todos owned by userID, newest first
	ListByUser(ctx context.Context, userID string) ([]model.Todo, error)

	// Insert stores a new todo; the store assigns id, created_at and is_done
	Insert(ctx context.Context, todo model.Todo) (model.Todo, error)

	// SetDone sets is_done on the todo matching both id and userID and
	// returns the number of rows changed
	SetDone(ctx context.Context, userID string, id int64, done bool) (int64, error)
}

// InMemoryTodoRepository implements TodoRepository with an in-memory slice
type InMemoryTodoRepository struct {
	todos  []model.Todo
	nextID int64
	now    func() time.Time
	mutex  sync.RWMutex
}

// NewInMemoryTodoRepository creates an empty in-memory todo repository
func NewInMemoryTodoRepository() *InMemoryTodoRepository {
	return &InMemoryTodoRepository{
		nextID: 1,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to stamp created_at
func (r *InMemoryTodoRepository) WithClock(now func() time.Time) *InMemoryTodoRepository {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.now = now
	return r
}

// ListByUser returns the todos owned by userID, newest first
func (r *InMemoryTodoRepository) ListByUser(ctx context.Context, userID string) ([]model.Todo, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	todos := make([]model.Todo, 0)
	for _, todo := range r.todos {
		if todo.UserID == userID {
			todos = append(todos, todo)
		}
	}

	slices.SortStableFunc(todos, func(a, b model.Todo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})

	return todos, nil
}

// Insert stores a new todo
func (r *InMemoryTodoRepository) Insert(ctx context.Context, todo model.Todo) (model.Todo, error) {
	if todo.UserID == "" {
		return model.Todo{}, ErrInvalidTodo{Reason: "user_id is required"}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored := model.Todo{
		ID:        r.nextID,
		Title:     todo.Title,
		IsDone:    false,
		UserID:    todo.UserID,
		CreatedAt: r.now().UTC(),
	}
	r.nextID++
	r.todos = append(r.todos, stored)

	return stored, nil
}

// SetDone sets is_done on the todo matching both id and userID
func (r *InMemoryTodoRepository) SetDone(ctx context.Context, userID string, id int64, done bool) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var affected int64
	for i := range r.todos {
		if r.todos[i].ID == id && r.todos[i].UserID == userID {
			r.todos[i].IsDone = done
			affected++
		}
	}

	return affected, nil
}
