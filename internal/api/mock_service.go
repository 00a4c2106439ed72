package api

import (
	"context"

	"github.com/cirocosta/todopage/internal/model"
)

// MockTodoService is a TodoService that stores nothing, used to build the
// router for OpenAPI document generation
type MockTodoService struct{}

// NewMockTodoService creates a new mock todo service
func NewMockTodoService() *MockTodoService {
	return &MockTodoService{}
}

// ListPage implements TodoService
func (s *MockTodoService) ListPage(ctx context.Context, userID string) ([]model.Todo, bool) {
	return []model.Todo{}, false
}

// Add implements TodoService
func (s *MockTodoService) Add(ctx context.Context, userID, title string) (bool, error) {
	return false, nil
}

// Toggle implements TodoService
func (s *MockTodoService) Toggle(ctx context.Context, userID string, id int64, currentIsDone bool) error {
	return nil
}
