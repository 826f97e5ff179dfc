package fiscalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}

	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the handlers of every bounded context.
type ApiHandleFunctions struct {
	// Routes for the ManifestsAPI part of the API
	ManifestsAPI ManifestsAPI
	// Routes for the ProcessingErrorsAPI part of the API
	ProcessingErrorsAPI ProcessingErrorsAPI
	// Routes for the ReturnsAPI part of the API
	ReturnsAPI ReturnsAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"GetManifest",
			http.MethodGet,
			"/v1/manifests/:manifestId",
			handleFunctions.ManifestsAPI.GetManifest,
		},
		{
			"RequestVerification",
			http.MethodPost,
			"/v1/manifests/:manifestId/verification",
			handleFunctions.ManifestsAPI.RequestVerification,
		},
		{
			"ConfirmManifest",
			http.MethodPost,
			"/v1/manifests/:manifestId/confirm",
			handleFunctions.ManifestsAPI.ConfirmManifest,
		},
		{
			"ProcessManifest",
			http.MethodPost,
			"/v1/manifests/:manifestId/process",
			handleFunctions.ManifestsAPI.ProcessManifest,
		},
		{
			"ListManifestAudit",
			http.MethodGet,
			"/v1/manifests/:manifestId/audit",
			handleFunctions.ManifestsAPI.ListManifestAudit,
		},
		{
			"ListProcessingErrors",
			http.MethodGet,
			"/v1/processing-errors",
			handleFunctions.ProcessingErrorsAPI.ListProcessingErrors,
		},
		{
			"GetProcessingErrorStats",
			http.MethodGet,
			"/v1/processing-errors/stats",
			handleFunctions.ProcessingErrorsAPI.GetProcessingErrorStats,
		},
		{
			"GetProcessingError",
			http.MethodGet,
			"/v1/processing-errors/:errorId",
			handleFunctions.ProcessingErrorsAPI.GetProcessingError,
		},
		{
			"RetryProcessingError",
			http.MethodPost,
			"/v1/processing-errors/:errorId/retry",
			handleFunctions.ProcessingErrorsAPI.RetryProcessingError,
		},
		{
			"SkipProcessingError",
			http.MethodPost,
			"/v1/processing-errors/:errorId/skip",
			handleFunctions.ProcessingErrorsAPI.SkipProcessingError,
		},
		{
			"LinkReturn",
			http.MethodPost,
			"/v1/returns/links",
			handleFunctions.ReturnsAPI.LinkReturn,
		},
		{
			"GetReturnLink",
			http.MethodGet,
			"/v1/returns/links/:shipmentNumber",
			handleFunctions.ReturnsAPI.GetReturnLink,
		},
	}
}
