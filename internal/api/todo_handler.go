package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/cirocosta/todopage/internal/identity"
	"github.com/cirocosta/todopage/internal/model"
	"github.com/cirocosta/todopage/internal/pagecache"
	"github.com/cirocosta/todopage/internal/service"
)

const (
	// unauthenticatedMessage is the whole body of the todo page without a session
	unauthenticatedMessage = "Silakan login terlebih dahulu."
	unauthorizedMessage    = "unauthorized"
	internalErrorMessage   = "internal server error"
)

// TodoHandler handles HTTP requests for the todo page and its form actions
type TodoHandler struct {
	todoService TodoService
	resolver    identity.Resolver
	cache       pagecache.Cache
	logger      *slog.Logger

	// renders collapses concurrent cache fills for the same identity
	renders singleflight.Group
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todoService TodoService, resolver identity.Resolver, cache pagecache.Cache, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		resolver:    resolver,
		cache:       cache,
		logger:      logger,
	}
}

// Page handles GET /todos
func (h *TodoHandler) Page(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolver.Resolve(r)
	if err != nil {
		h.logger.DebugContext(r.Context(), "todo page without identity", "error", err)
		writeText(w, unauthenticatedMessage, http.StatusOK)
		return
	}

	body, err := h.page(r.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "render todo page", "user_id", userID, "error", err)
		writeText(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// the server-side cache is the only copy that gets invalidated
	w.Header().Set("Cache-Control", "private, no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// page returns the rendered page of userID from the cache, rendering and
// caching it on a miss. Cache failures count as misses.
func (h *TodoHandler) page(ctx context.Context, userID string) ([]byte, error) {
	body, ok, err := h.cache.Get(ctx, service.TodosPath, userID)
	switch {
	case err != nil:
		h.logger.WarnContext(ctx, "page cache get", "path", service.TodosPath, "error", err)
	case ok:
		return body, nil
	}

	// read before the store so a mutation landing during the render
	// keeps this page out of the cache
	gen, err := h.cache.Generation(ctx, service.TodosPath)
	if errors.Is(err, pagecache.ErrDisabled) {
		return h.render(ctx, userID)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "page cache generation", "path", service.TodosPath, "error", err)
		return h.render(ctx, userID)
	}

	// the fill outlives any single waiting request
	fillCtx := context.WithoutCancel(ctx)
	flight := userID + "@" + strconv.FormatUint(gen, 10)
	v, err, _ := h.renders.Do(flight, func() (any, error) {
		todos, degraded := h.todoService.ListPage(fillCtx, userID)

		body, err := renderPage(model.TodoPage{Identity: userID, Todos: todos})
		if err != nil {
			return nil, err
		}
		if degraded {
			return body, nil
		}

		stored, err := h.cache.Set(fillCtx, service.TodosPath, userID, gen, body)
		switch {
		case err != nil:
			h.logger.WarnContext(fillCtx, "page cache set", "path", service.TodosPath, "error", err)
		case !stored:
			h.logger.DebugContext(fillCtx, "page invalidated during render", "path", service.TodosPath, "user_id", userID)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

// render builds the page of userID without touching the cache
func (h *TodoHandler) render(ctx context.Context, userID string) ([]byte, error) {
	todos, _ := h.todoService.ListPage(ctx, userID)
	return renderPage(model.TodoPage{Identity: userID, Todos: todos})
}

// Add handles POST /todos
func (h *TodoHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, "invalid form", http.StatusBadRequest)
		return
	}

	userID, err := h.resolver.Resolve(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.todoService.Add(r.Context(), userID, r.PostForm.Get("title")); err != nil {
		h.fail(w, r, err)
		return
	}

	http.Redirect(w, r, service.TodosPath, http.StatusSeeOther)
}

// Toggle handles POST /todos/{id}/toggle
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeText(w, "invalid todo id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeText(w, "invalid form", http.StatusBadRequest)
		return
	}

	currentIsDone, err := strconv.ParseBool(r.PostForm.Get("is_done"))
	if err != nil {
		writeText(w, "invalid is_done", http.StatusBadRequest)
		return
	}

	userID, err := h.resolver.Resolve(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.todoService.Toggle(r.Context(), userID, id, currentIsDone); err != nil {
		h.fail(w, r, err)
		return
	}

	http.Redirect(w, r, service.TodosPath, http.StatusSeeOther)
}

// fail answers a failed mutation without exposing the cause
func (h *TodoHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, identity.ErrUnauthenticated) {
		h.logger.InfoContext(r.Context(), "mutation without identity", "path", r.URL.Path, "error", err)
		writeText(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}

	h.logger.ErrorContext(r.Context(), "mutation failed", "path", r.URL.Path, "error", err)
	writeText(w, internalErrorMessage, http.StatusInternalServerError)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeText writes a plain text response with the given status code
func writeText(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(message))
}
