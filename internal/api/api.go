// package api provides the HTTP API for the application
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cirocosta/todopage/internal/identity"
	"github.com/cirocosta/todopage/internal/model"
	"github.com/cirocosta/todopage/internal/pagecache"
	"github.com/cirocosta/todopage/internal/service"
	"github.com/cirocosta/todopage/pkg/router"
)

// TodoService defines the minimal interface needed by the API
type TodoService interface {
	// ListPage returns the todos of userID, newest first. degraded is set when
	// a store failure was replaced by the empty list.
	ListPage(ctx context.Context, userID string) (todos []model.Todo, degraded bool)

	// Add stores a new todo and reports whether anything was written
	Add(ctx context.Context, userID, title string) (bool, error)

	// Toggle writes !currentIsDone to the todo id owned by userID
	Toggle(ctx context.Context, userID string, id int64, currentIsDone bool) error
}

// Deps are the components the routes are served by
type Deps struct {
	Service  TodoService
	Resolver identity.Resolver
	// Cache holds rendered pages. Nil disables caching.
	Cache  pagecache.Cache
	Logger *slog.Logger

	Env     string
	Version string
	// CookieName is the session cookie documented for the session mode
	CookieName string
}

// API holds the components needed to register routes
type API struct {
	router      *router.DocRouter
	todoHandler *TodoHandler
	deps        Deps
}

// NewRouter creates a new router with all routes configured
func NewRouter(deps Deps) *router.DocRouter {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Cache == nil {
		deps.Cache = pagecache.Nop{}
	}

	r := router.NewDocRouter("Todo Page",
		"Per-user todo list page with add and toggle",
		deps.Version,
	)

	r.Use(requestIDMiddleware, loggerMiddleware(deps.Logger), recovererMiddleware(deps.Logger))

	api := &API{
		router:      r,
		todoHandler: NewTodoHandler(deps.Service, deps.Resolver, deps.Cache, deps.Logger),
		deps:        deps,
	}
	api.registerRoutes()

	return r
}

func (api *API) registerRoutes() {
	api.router = api.router.
		WithTag("Todos", "The todo page and its form actions").
		WithTag("Core", "Core endpoints")

	if api.deps.CookieName != "" {
		api.router = api.router.WithCookieAuth(api.deps.CookieName)
	}
	api.router = api.router.WithBearerAuth()

	api.router.RegisterResponse("ServerError", map[string]any{
		"description": "Unexpected failure",
		"content": map[string]any{
			router.ContentTypeText: map[string]any{"example": internalErrorMessage},
		},
	})

	security := []string{router.BearerAuth}
	if api.deps.CookieName != "" {
		security = append([]string{router.CookieAuth}, security...)
	}

	api.router.Route("GET", "/{$}", homeHandler).
		WithName("Home").
		WithDescription("Redirects to the todo page").
		WithSuccessStatus("303").
		WithTags("Core").
		Register()

	api.router.Route("GET", "/health", api.healthHandler).
		WithName("Health Check").
		WithDescription("Health check endpoint").
		WithResponse(&model.StatusResponse{}).
		WithTags("Core").
		Register()

	api.router.Route("GET", "/version", api.versionHandler).
		WithName("Version").
		WithDescription("Build version").
		WithResponse(&model.VersionResponse{}).
		WithTags("Core").
		Register()

	api.router.Route("GET", "/openapi.json", api.openAPIHandler).
		WithName("OpenAPI").
		WithDescription("This document").
		WithTags("Core").
		Register()

	api.router.Route("GET", service.TodosPath, api.todoHandler.Page).
		WithName("Todo Page").
		WithDescription("Renders the todos of the acting identity. Without a session the body is only the login placeholder.").
		WithResponseContentType(router.ContentTypeHTML).
		WithTags("Todos").
		WithSecurity(security...).
		Register()

	api.router.Route("POST", service.TodosPath, api.todoHandler.Add).
		WithName("Add Todo").
		WithDescription("Adds a todo for the acting identity and redirects to the todo page").
		WithFormRequest(&model.AddTodoForm{}).
		WithSuccessStatus("303").
		WithErrorResponse("400", "Malformed form body", nil,
			router.Example{ContentType: router.ContentTypeText, Value: "invalid form"}).
		WithErrorResponse("401", "No session", nil,
			router.Example{ContentType: router.ContentTypeText, Value: unauthorizedMessage}).
		WithTags("Todos").
		WithSecurity(security...).
		Register()

	api.router.Route("POST", service.TodosPath+"/{id}/toggle", api.todoHandler.Toggle).
		WithName("Toggle Todo").
		WithDescription("Writes the inverse of the submitted is_done to the todo and redirects to the todo page. Todos of other identities are left unchanged.").
		WithFormRequest(&model.ToggleTodoForm{}).
		WithSuccessStatus("303").
		WithErrorResponse("400", "Malformed id or form body", nil,
			router.Example{ContentType: router.ContentTypeText, Value: "invalid todo id"}).
		WithErrorResponse("401", "No session", nil,
			router.Example{ContentType: router.ContentTypeText, Value: unauthorizedMessage}).
		WithTags("Todos").
		WithSecurity(security...).
		Register()

	api.router.RegisterRouteResponse(service.TodosPath, "POST", "500", "ServerError")
	api.router.RegisterRouteResponse(service.TodosPath+"/{id}/toggle", "POST", "500", "ServerError")
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, service.TodosPath, http.StatusSeeOther)
}

func (api *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, model.StatusResponse{OK: true, Env: api.deps.Env}, http.StatusOK)
}

func (api *API) versionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, model.VersionResponse{Version: api.deps.Version}, http.StatusOK)
}

func (api *API) openAPIHandler(w http.ResponseWriter, r *http.Request) {
	data, err := api.router.OpenAPIJSON()
	if err != nil {
		api.deps.Logger.ErrorContext(r.Context(), "openapi document", "error", err)
		writeText(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", router.ContentTypeJSON)
	_, _ = w.Write(data)
}
