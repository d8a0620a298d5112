package http

import (
	"ecolocker/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const BasePath = "/api/v1/ecolocker"

type GetNearbyLockersParams struct {
	Lat    float64
	Lng    float64
	Radius *float64
}

type GetOrdersParams struct {
	Role   *string
	Status *[]string
}

// ServerInterface lists the operations of api/openapi.yaml.
type ServerInterface interface {
	GetLockers(ctx echo.Context) error
	GetNearbyLockers(ctx echo.Context, params GetNearbyLockersParams) error
	GetOrders(ctx echo.Context, params GetOrdersParams) error
	CreateOrder(ctx echo.Context) error
	GetOrder(ctx echo.Context, orderID kernel.UUID) error
	PayOrder(ctx echo.Context, orderID kernel.UUID) error
	SchedulePickup(ctx echo.Context, orderID kernel.UUID) error
	ConfirmRiderPickup(ctx echo.Context, orderID kernel.UUID) error
	VerifyPin(ctx echo.Context, orderID kernel.UUID) error
	CancelOrder(ctx echo.Context, orderID kernel.UUID) error
}

// ServerInterfaceWrapper binds path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) GetLockers(ctx echo.Context) error {
	return w.Handler.GetLockers(ctx)
}

func (w *ServerInterfaceWrapper) GetNearbyLockers(ctx echo.Context) error {
	var params GetNearbyLockersParams

	if err := runtime.BindQueryParameter("form", true, true, "lat", ctx.QueryParams(), &params.Lat); err != nil {
		return badRequest(ctx, "Invalid format for parameter lat")
	}
	if err := runtime.BindQueryParameter("form", true, true, "lng", ctx.QueryParams(), &params.Lng); err != nil {
		return badRequest(ctx, "Invalid format for parameter lng")
	}
	if err := runtime.BindQueryParameter("form", true, false, "radius", ctx.QueryParams(), &params.Radius); err != nil {
		return badRequest(ctx, "Invalid format for parameter radius")
	}

	return w.Handler.GetNearbyLockers(ctx, params)
}

func (w *ServerInterfaceWrapper) GetOrders(ctx echo.Context) error {
	var params GetOrdersParams

	if err := runtime.BindQueryParameter("form", true, false, "role", ctx.QueryParams(), &params.Role); err != nil {
		return badRequest(ctx, "Invalid format for parameter role")
	}
	if err := runtime.BindQueryParameter("form", false, false, "status", ctx.QueryParams(), &params.Status); err != nil {
		return badRequest(ctx, "Invalid format for parameter status")
	}

	return w.Handler.GetOrders(ctx, params)
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.GetOrder)
}

func (w *ServerInterfaceWrapper) PayOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.PayOrder)
}

func (w *ServerInterfaceWrapper) SchedulePickup(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.SchedulePickup)
}

func (w *ServerInterfaceWrapper) ConfirmRiderPickup(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.ConfirmRiderPickup)
}

func (w *ServerInterfaceWrapper) VerifyPin(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.VerifyPin)
}

func (w *ServerInterfaceWrapper) CancelOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.CancelOrder)
}

func (w *ServerInterfaceWrapper) withOrderID(ctx echo.Context, next func(echo.Context, kernel.UUID) error) error {
	var raw openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return badRequest(ctx, "Invalid format for parameter orderId")
	}

	orderID, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return badRequest(ctx, "Invalid format for parameter orderId")
	}
	return next(ctx, orderID)
}

// RegisterHandlers mounts the API under BasePath. Order routes require X-User-ID;
// the actor check runs before request validation so a missing header is always a 401.
func RegisterHandlers(e *echo.Echo, si ServerInterface, validator echo.MiddlewareFunc) {
	w := &ServerInterfaceWrapper{Handler: si}
	if validator == nil {
		validator = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	lockers := e.Group(BasePath+"/lockers", validator)
	lockers.GET("", w.GetLockers)
	lockers.GET("/nearby", w.GetNearbyLockers)

	orders := e.Group(BasePath+"/orders", RequireActor, validator)
	orders.GET("", w.GetOrders)
	orders.POST("", w.CreateOrder)
	orders.GET("/:orderId", w.GetOrder)
	orders.POST("/:orderId/pay", w.PayOrder)
	orders.POST("/:orderId/schedule", w.SchedulePickup)
	orders.POST("/:orderId/confirm-pickup", w.ConfirmRiderPickup)
	orders.POST("/:orderId/verify-pin", w.VerifyPin)
	orders.POST("/:orderId/cancel", w.CancelOrder)
}
