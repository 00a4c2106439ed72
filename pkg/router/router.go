// package router provides a router wrapper that captures documentation data
package router

import (
	"net/http"
)

// Content types understood by the document generator
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeHTML = "text/html"
	ContentTypeText = "text/plain"
)

// Security scheme names usable with RouteConfig.WithSecurity
const (
	BearerAuth = "bearerAuth"
	CookieAuth = "cookieAuth"
)

// RouteResponse represents a documented response for a specific HTTP status code
type RouteResponse struct {
	StatusCode  string    // HTTP status code (e.g., "303", "400")
	Description string    // Description of the response
	Schema      any       // Response schema/type (optional)
	Examples    []Example // Example responses (optional)
}

// Example represents an example response for documentation
type Example struct {
	ContentType string // Content type of the example (e.g., "text/plain")
	Value       string // Example value as string
}

// Server is an entry of the document's servers list
type Server struct {
	URL         string
	Description string
}

// Tag describes a group of operations
type Tag struct {
	Name        string
	Description string
}

// RouteInfo stores documentation for a route
type RouteInfo struct {
	Method              string                   // HTTP method (GET, POST, etc.)
	Path                string                   // URL path, with {name} wildcards
	Name                string                   // Friendly name for the endpoint
	Description         string                   // Description of what the endpoint does
	Handler             http.Handler             // The actual handler function
	RequestType         any                      // Example request type (for schema generation)
	RequestContentType  string                   // Media type of the request body
	ResponseType        any                      // Example success response type (for schema generation)
	ResponseContentType string                   // Media type of the success response
	SuccessStatus       string                   // Status code of the success response
	Responses           map[string]RouteResponse // Map of HTTP status codes to responses
	Tags                []string                 // Tags for grouping endpoints
	Security            []string                 // Names of the security schemes accepted
}

// Secured reports whether the route requires any security scheme
func (ri RouteInfo) Secured() bool {
	return len(ri.Security) > 0
}

// RouteConfig is a builder for route configuration
type RouteConfig struct {
	router *DocRouter
	info   RouteInfo
}

// DocRouter wraps http.ServeMux to add documentation capabilities
type DocRouter struct {
	mux     *http.ServeMux
	handler http.Handler
	routes  []RouteInfo

	title         string
	description   string
	version       string
	servers       []Server
	tags          []Tag
	useBearerAuth bool
	cookieName    string

	customResponses map[string]map[string]any
	routeResponses  map[string]map[string]string // routeID -> statusCode -> responseName
}

// NewDocRouter creates a new documented router
func NewDocRouter(title, description, version string) *DocRouter {
	mux := http.NewServeMux()
	return &DocRouter{
		mux:             mux,
		handler:         mux,
		routes:          []RouteInfo{},
		title:           title,
		description:     description,
		version:         version,
		customResponses: make(map[string]map[string]any),
		routeResponses:  make(map[string]map[string]string),
	}
}

// WithServer adds an entry to the servers list
func (dr *DocRouter) WithServer(url, description string) *DocRouter {
	dr.servers = append(dr.servers, Server{URL: url, Description: description})
	return dr
}

// WithTag documents a tag used by routes
func (dr *DocRouter) WithTag(name, description string) *DocRouter {
	dr.tags = append(dr.tags, Tag{Name: name, Description: description})
	return dr
}

// WithBearerAuth declares the bearer JWT security scheme
func (dr *DocRouter) WithBearerAuth() *DocRouter {
	dr.useBearerAuth = true
	return dr
}

// WithCookieAuth declares a security scheme reading a token from the named
// cookie
func (dr *DocRouter) WithCookieAuth(name string) *DocRouter {
	dr.cookieName = name
	return dr
}

// Route starts a route configuration chain
func (dr *DocRouter) Route(method, path string, handler http.HandlerFunc) *RouteConfig {
	return &RouteConfig{
		router: dr,
		info: RouteInfo{
			Method:              method,
			Path:                path,
			Handler:             handler,
			RequestContentType:  ContentTypeJSON,
			ResponseContentType: ContentTypeJSON,
			SuccessStatus:       "200",
			Responses:           make(map[string]RouteResponse),
		},
	}
}

// WithName adds a name to the route
func (rc *RouteConfig) WithName(name string) *RouteConfig {
	rc.info.Name = name
	return rc
}

// WithDescription adds a description to the route
func (rc *RouteConfig) WithDescription(description string) *RouteConfig {
	rc.info.Description = description
	return rc
}

// WithRequest adds a JSON request body type to the route
func (rc *RouteConfig) WithRequest(requestType any) *RouteConfig {
	rc.info.RequestType = requestType
	rc.info.RequestContentType = ContentTypeJSON
	return rc
}

// WithFormRequest adds a url-encoded form body type to the route. Field
// names come from `form` tags.
func (rc *RouteConfig) WithFormRequest(requestType any) *RouteConfig {
	rc.info.RequestType = requestType
	rc.info.RequestContentType = ContentTypeForm
	return rc
}

// WithResponse adds a success response type to the route
func (rc *RouteConfig) WithResponse(responseType any) *RouteConfig {
	rc.info.ResponseType = responseType
	return rc
}

// WithResponseContentType sets the media type of the success response
func (rc *RouteConfig) WithResponseContentType(contentType string) *RouteConfig {
	rc.info.ResponseContentType = contentType
	return rc
}

// WithSuccessStatus replaces the default 200 success status, e.g. "303" for
// handlers that redirect
func (rc *RouteConfig) WithSuccessStatus(statusCode string) *RouteConfig {
	rc.info.SuccessStatus = statusCode
	return rc
}

// WithErrorResponse adds an error response to the route
func (rc *RouteConfig) WithErrorResponse(statusCode, description string, schema any, examples ...Example) *RouteConfig {
	rc.info.Responses[statusCode] = RouteResponse{
		StatusCode:  statusCode,
		Description: description,
		Schema:      schema,
		Examples:    examples,
	}
	return rc
}

// WithTags adds tags to the route
func (rc *RouteConfig) WithTags(tags ...string) *RouteConfig {
	rc.info.Tags = tags
	return rc
}

// WithSecurity lists the security schemes, any of which the route accepts
func (rc *RouteConfig) WithSecurity(schemes ...string) *RouteConfig {
	rc.info.Security = schemes
	return rc
}

// Register finalizes the route configuration and registers it with the router
func (rc *RouteConfig) Register() {
	// Go 1.22 pattern with method
	pattern := rc.info.Method + " " + rc.info.Path

	rc.router.mux.Handle(pattern, rc.info.Handler)
	rc.router.routes = append(rc.router.routes, rc.info)
}

// GetRoutes returns all documented routes
func (dr *DocRouter) GetRoutes() []RouteInfo {
	return dr.routes
}

// ServeHTTP makes DocRouter implement the http.Handler interface
func (dr *DocRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dr.handler.ServeHTTP(w, r)
}

// Use wraps every route, including ones registered later, with middleware.
// The first middleware given is the outermost.
func (dr *DocRouter) Use(middleware ...func(http.Handler) http.Handler) {
	handler := dr.handler
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	dr.handler = handler
}
