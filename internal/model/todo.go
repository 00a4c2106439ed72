// package model contains the data models for the todo page application
package model

import (
	"time"
)

// Todo represents a row of the todos table
type Todo struct {
	ID        int64     `json:"id" doc:"Store-assigned identifier" example:"42"`
	Title     string    `json:"title" doc:"Title of the todo item" example:"Beli sayur"`
	IsDone    bool      `json:"is_done" doc:"Whether the todo item is done" example:"false"`
	UserID    string    `json:"user_id" doc:"Identity owning the todo item" example:"demo-user"`
	CreatedAt time.Time `json:"created_at" doc:"Store-assigned creation time" example:"2024-01-01T12:00:00Z"`
}

// AddTodoForm is the form body submitted to POST /todos
type AddTodoForm struct {
	Title string `form:"title" doc:"Title of the new todo item" example:"Beli sayur"`
}

// ToggleTodoForm is the form body submitted to POST /todos/{id}/toggle.
// IsDone carries the value shown on the page when it was rendered, not the
// value currently stored.
type ToggleTodoForm struct {
	IsDone bool `form:"is_done" doc:"Done state as rendered on the page" example:"false"`
}

// TodoPage is the view model of the rendered todo page
type TodoPage struct {
	Identity string
	Todos    []Todo
}

// StatusResponse is returned by the health endpoint
type StatusResponse struct {
	OK  bool   `json:"ok" doc:"Always true when the process serves requests"`
	Env string `json:"env" doc:"Deployment environment" example:"dev"`
}

// VersionResponse is returned by the version endpoint
type VersionResponse struct {
	Version string `json:"version" doc:"Build version" example:"dev"`
}
