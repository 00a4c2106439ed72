package router

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RegisterResponse adds a named response that routes can reference
func (dr *DocRouter) RegisterResponse(name string, response map[string]any) {
	dr.customResponses[name] = response
}

// RegisterRouteResponse associates a named response with a route and status code
func (dr *DocRouter) RegisterRouteResponse(path, method, statusCode, responseName string) {
	id := routeID(method, path)
	if _, exists := dr.routeResponses[id]; !exists {
		dr.routeResponses[id] = make(map[string]string)
	}
	dr.routeResponses[id][statusCode] = responseName
}

func routeID(method, path string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(method), path)
}

// OpenAPI returns the OpenAPI 3 document describing every registered route
func (dr *DocRouter) OpenAPI() map[string]any {
	gen := newSchemaGenerator(newSchemaRegistry())

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       dr.title,
			"description": dr.description,
			"version":     dr.version,
		},
		"paths": dr.generatePaths(gen),
	}

	if len(dr.servers) > 0 {
		servers := make([]any, 0, len(dr.servers))
		for _, s := range dr.servers {
			servers = append(servers, map[string]any{"url": s.URL, "description": s.Description})
		}
		spec["servers"] = servers
	}

	if len(dr.tags) > 0 {
		tags := make([]any, 0, len(dr.tags))
		for _, t := range dr.tags {
			tags = append(tags, map[string]any{"name": t.Name, "description": t.Description})
		}
		spec["tags"] = tags
	}

	spec["components"] = dr.generateComponents(gen)
	return spec
}

// OpenAPIJSON returns the indented JSON encoding of OpenAPI
func (dr *DocRouter) OpenAPIJSON() ([]byte, error) {
	data, err := json.MarshalIndent(dr.OpenAPI(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal openapi document: %w", err)
	}
	return data, nil
}

// extractPathParams gets path parameters from a URL path
func extractPathParams(path string) []string {
	var params []string
	for _, part := range strings.Split(path, "/") {
		if len(part) > 2 && part[0] == '{' && part[len(part)-1] == '}' {
			// {name...} matches the remaining path
			params = append(params, strings.TrimSuffix(part[1:len(part)-1], "..."))
		}
	}
	return params
}

// generatePathParameters creates parameter objects for path parameters
func generatePathParameters(params []string) []any {
	parameters := make([]any, 0, len(params))
	for _, param := range params {
		parameters = append(parameters, map[string]any{
			"name":        param,
			"in":          "path",
			"required":    true,
			"schema":      map[string]any{"type": "string"},
			"description": fmt.Sprintf("%s parameter", param),
		})
	}
	return parameters
}

func operationID(method, path string) string {
	id := strings.NewReplacer("/", "_", "{", "", "}", "", ".", "").Replace(path)
	return strings.ToLower(method) + strings.TrimRight(id, "_")
}

func (dr *DocRouter) generatePaths(gen *schemaGenerator) map[string]any {
	paths := map[string]any{}

	for _, route := range dr.routes {
		// "{$}" only anchors the pattern and is not part of the documented path
		path := strings.TrimSuffix(route.Path, "{$}")
		if path == "" {
			path = "/"
		}

		if _, exists := paths[path]; !exists {
			paths[path] = map[string]any{}
		}
		pathItem := paths[path].(map[string]any)
		method := strings.ToLower(route.Method)

		operation := map[string]any{
			"summary":     route.Name,
			"description": route.Description,
			"operationId": operationID(method, path),
			"responses":   dr.generateResponses(gen, route),
		}

		if len(route.Tags) > 0 {
			operation["tags"] = route.Tags
		}

		if params := extractPathParams(path); len(params) > 0 {
			operation["parameters"] = generatePathParameters(params)
		}

		if route.RequestType != nil && (method == "post" || method == "put" || method == "patch") {
			operation["requestBody"] = map[string]any{
				"description": fmt.Sprintf("request body for %s", route.Name),
				"required":    true,
				"content": map[string]any{
					route.RequestContentType: map[string]any{
						"schema": gen.schemaRef(route.RequestType),
					},
				},
			}
		}

		if route.Secured() {
			security := make([]any, 0, len(route.Security))
			for _, scheme := range route.Security {
				security = append(security, map[string]any{scheme: []string{}})
			}
			operation["security"] = security
		}

		pathItem[method] = operation
	}

	return paths
}

func (dr *DocRouter) generateResponses(gen *schemaGenerator, route RouteInfo) map[string]any {
	responses := map[string]any{}

	for statusCode, rr := range route.Responses {
		content := map[string]any{}

		if rr.Schema != nil {
			content[ContentTypeJSON] = map[string]any{"schema": gen.schemaRef(rr.Schema)}
		}

		for _, example := range rr.Examples {
			media, ok := content[example.ContentType].(map[string]any)
			if !ok {
				media = map[string]any{}
				content[example.ContentType] = media
			}
			media["example"] = example.Value
		}

		response := map[string]any{"description": rr.Description}
		if len(content) > 0 {
			response["content"] = content
		}
		responses[statusCode] = response
	}

	if _, exists := responses[route.SuccessStatus]; !exists {
		response := map[string]any{"description": "successful operation"}

		switch {
		case route.ResponseType != nil:
			response["content"] = map[string]any{
				route.ResponseContentType: map[string]any{"schema": gen.schemaRef(route.ResponseType)},
			}
		case route.ResponseContentType != ContentTypeJSON:
			response["content"] = map[string]any{
				route.ResponseContentType: map[string]any{"schema": map[string]any{"type": "string"}},
			}
		}

		responses[route.SuccessStatus] = response
	}

	if named, exists := dr.routeResponses[routeID(route.Method, route.Path)]; exists {
		for code, name := range named {
			// responses declared on the route win
			if _, exists := responses[code]; exists {
				continue
			}
			responses[code] = map[string]any{
				"$ref": fmt.Sprintf("#/components/responses/%s", name),
			}
		}
	}

	return responses
}

func (dr *DocRouter) generateComponents(gen *schemaGenerator) map[string]any {
	components := map[string]any{
		"schemas": gen.registry.getSchemas(),
	}

	if len(dr.customResponses) > 0 {
		responses := make(map[string]any, len(dr.customResponses))
		for name, r := range dr.customResponses {
			responses[name] = r
		}
		components["responses"] = responses
	}

	schemes := map[string]any{}
	if dr.useBearerAuth {
		schemes[BearerAuth] = map[string]any{
			"type":         "http",
			"scheme":       "bearer",
			"bearerFormat": "JWT",
		}
	}
	if dr.cookieName != "" {
		schemes[CookieAuth] = map[string]any{
			"type": "apiKey",
			"in":   "cookie",
			"name": dr.cookieName,
		}
	}
	if len(schemes) > 0 {
		components["securitySchemes"] = schemes
	}

	return components
}
