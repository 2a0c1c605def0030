// Package api has the artcache REST API: the embedded OpenAPI document, the server
// interface that the implementation satisfies, and the Echo handler registration.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/aceeric/artcache/api/models"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var spec []byte

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// GET /data/{file}
	GetData(ctx echo.Context, file string, params models.GetDataParams) error
	// GET /artworks
	GetArtworks(ctx echo.Context) error
	// GET /images/{id}
	GetImage(ctx echo.Context, id string, params models.GetImageParams) error
	// GET /images/{id}/url
	GetImageUrl(ctx echo.Context, id string, params models.GetImageUrlParams) error
	// GET /manifest/{id}
	GetManifestEntry(ctx echo.Context, id string) error
	// GET /cmd/stop
	CmdStop(ctx echo.Context) error
	// GET /cmd/cache
	CmdCacheList(ctx echo.Context) error
	// DELETE /cmd/cache
	CmdCacheClear(ctx echo.Context) error
	// POST /cmd/preload
	CmdPreload(ctx echo.Context) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// GetData converts echo context to params.
func (w *ServerInterfaceWrapper) GetData(ctx echo.Context) error {
	var file string
	err := runtime.BindStyledParameterWithLocation("simple", false, "file", runtime.ParamLocationPath, ctx.Param("file"), &file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter file: %s", err))
	}
	var params models.GetDataParams
	err = runtime.BindQueryParameter("form", true, false, "refresh", ctx.QueryParams(), &params.Refresh)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter refresh: %s", err))
	}
	return w.Handler.GetData(ctx, file, params)
}

// GetArtworks converts echo context to params.
func (w *ServerInterfaceWrapper) GetArtworks(ctx echo.Context) error {
	return w.Handler.GetArtworks(ctx)
}

// GetImage converts echo context to params.
func (w *ServerInterfaceWrapper) GetImage(ctx echo.Context) error {
	id, err := bindId(ctx)
	if err != nil {
		return err
	}
	var params models.GetImageParams
	err = runtime.BindQueryParameter("form", true, false, "format", ctx.QueryParams(), &params.Format)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter format: %s", err))
	}
	return w.Handler.GetImage(ctx, id, params)
}

// GetImageUrl converts echo context to params.
func (w *ServerInterfaceWrapper) GetImageUrl(ctx echo.Context) error {
	id, err := bindId(ctx)
	if err != nil {
		return err
	}
	var params models.GetImageUrlParams
	err = runtime.BindQueryParameter("form", true, false, "format", ctx.QueryParams(), &params.Format)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter format: %s", err))
	}
	return w.Handler.GetImageUrl(ctx, id, params)
}

// GetManifestEntry converts echo context to params.
func (w *ServerInterfaceWrapper) GetManifestEntry(ctx echo.Context) error {
	id, err := bindId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetManifestEntry(ctx, id)
}

// CmdStop converts echo context to params.
func (w *ServerInterfaceWrapper) CmdStop(ctx echo.Context) error {
	return w.Handler.CmdStop(ctx)
}

// CmdCacheList converts echo context to params.
func (w *ServerInterfaceWrapper) CmdCacheList(ctx echo.Context) error {
	return w.Handler.CmdCacheList(ctx)
}

// CmdCacheClear converts echo context to params.
func (w *ServerInterfaceWrapper) CmdCacheClear(ctx echo.Context) error {
	return w.Handler.CmdCacheClear(ctx)
}

// CmdPreload converts echo context to params.
func (w *ServerInterfaceWrapper) CmdPreload(ctx echo.Context) error {
	return w.Handler.CmdPreload(ctx)
}

func bindId(ctx echo.Context) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, ctx.Param("id"), &id)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}
	return id, nil
}

// EchoRouter is an interface that wraps the methods of echo.Echo and echo.Group
// to allow registering handlers on either.
type EchoRouter interface {
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers, and prepends BaseURL to the paths, so that the paths
// can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}
	router.GET(baseURL+"/data/:file", wrapper.GetData)
	router.GET(baseURL+"/artworks", wrapper.GetArtworks)
	router.GET(baseURL+"/images/:id", wrapper.GetImage)
	router.GET(baseURL+"/images/:id/url", wrapper.GetImageUrl)
	router.GET(baseURL+"/manifest/:id", wrapper.GetManifestEntry)
	router.GET(baseURL+"/cmd/stop", wrapper.CmdStop)
	router.GET(baseURL+"/cmd/cache", wrapper.CmdCacheList)
	router.DELETE(baseURL+"/cmd/cache", wrapper.CmdCacheClear)
	router.POST(baseURL+"/cmd/preload", wrapper.CmdPreload)
}

// GetSwagger returns the OpenAPI document of the REST API
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("error loading the OpenAPI document: %w", err)
	}
	if err := swagger.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("the OpenAPI document is invalid: %w", err)
	}
	return swagger, nil
}
