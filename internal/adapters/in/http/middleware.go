package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/observability"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const (
	UserIDHeader = "X-User-ID"
	actorKey     = "ecolocker.actor"

	msgMissingActor = "Missing or invalid X-User-ID header"
)

// RequireActor reads the gateway-authenticated user from X-User-ID.
func RequireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := strings.TrimSpace(c.Request().Header.Get(UserIDHeader))
		actor, err := kernel.UUIDFromString(raw)
		if raw == "" || err != nil {
			return c.JSON(http.StatusUnauthorized, Error{Code: http.StatusUnauthorized, Message: msgMissingActor})
		}
		c.Set(actorKey, actor)
		return next(c)
	}
}

// actorFrom returns the user stored by RequireActor.
func actorFrom(c echo.Context) (kernel.UUID, bool) {
	actor, ok := c.Get(actorKey).(kernel.UUID)
	return actor, ok
}

// NewRequestValidator checks requests against the OpenAPI document. Requests for
// paths the document does not describe pass through untouched.
func NewRequestValidator(spec []byte) (echo.MiddlewareFunc, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, err
	}
	if err = doc.Validate(loader.Context); err != nil {
		return nil, err
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, findErr := router.FindRoute(req)
			if findErr != nil {
				return next(c)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    &openapi3filter.Options{MultiError: false},
			}
			if valErr := openapi3filter.ValidateRequest(req.Context(), input); valErr != nil {
				return badRequest(c, validationMessage(valErr))
			}
			return next(c)
		}
	}, nil
}

func validationMessage(err error) string {
	var (
		reqErr    *openapi3filter.RequestError
		schemaErr *openapi3.SchemaError
	)
	if !errors.As(err, &reqErr) {
		return "Invalid request"
	}
	msg := "Invalid request body"
	if reqErr.Parameter != nil {
		msg = "Invalid parameter " + reqErr.Parameter.Name
	}
	if errors.As(err, &schemaErr) && schemaErr.Reason != "" {
		msg += ": " + schemaErr.Reason
	}
	return msg
}

// Metrics counts requests by route template, status and method.
func Metrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		status := c.Response().Status
		if err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
		}
		observability.RequestsTotal.WithLabelValues(c.Path(), strconv.Itoa(status), c.Request().Method).Inc()
		return err
	}
}

// Tracing continues the caller's trace and names the span after the route template.
func Tracing(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		ctx, span := observability.Tracer().Start(ctx, req.Method+" "+c.Path())
		defer span.End()

		c.SetRequest(req.WithContext(ctx))
		err := next(c)
		span.SetAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.route", c.Path()),
			attribute.Int("http.status_code", c.Response().Status),
		)
		return err
	}
}
