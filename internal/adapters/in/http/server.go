package http

import (
	"context"
	"net/http"
	"strings"

	"ecolocker/internal/core/application/usecases/commands"
	"ecolocker/internal/core/application/usecases/queries"
	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

type (
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
	}
	PayOrderHandler interface {
		Handle(ctx context.Context, cmd commands.PayOrderCommand) (*order.Order, error)
	}
	SchedulePickupHandler interface {
		Handle(ctx context.Context, cmd commands.SchedulePickupCommand) (*order.Order, error)
	}
	ConfirmRiderPickupHandler interface {
		Handle(ctx context.Context, cmd commands.ConfirmRiderPickupCommand) (commands.ConfirmRiderPickupResult, error)
	}
	VerifyPinHandler interface {
		Handle(ctx context.Context, cmd commands.VerifyPinCommand) (*order.Order, error)
	}
	CancelOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CancelOrderCommand) (*order.Order, error)
	}

	ActiveLockersHandler interface {
		Handle(ctx context.Context, query queries.GetActiveLockersQuery) ([]queries.LockerView, error)
	}
	NearbyLockersHandler interface {
		Handle(ctx context.Context, query queries.GetNearbyLockersQuery) ([]queries.NearbyLockerView, error)
	}
	OrdersHandler interface {
		Handle(ctx context.Context, query queries.GetOrdersQuery) ([]queries.OrderView, error)
	}
	OrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
	}
)

// Handlers groups the use cases the REST surface calls into.
type Handlers struct {
	CreateOrder        CreateOrderHandler
	PayOrder           PayOrderHandler
	SchedulePickup     SchedulePickupHandler
	ConfirmRiderPickup ConfirmRiderPickupHandler
	VerifyPin          VerifyPinHandler
	CancelOrder        CancelOrderHandler

	ActiveLockers ActiveLockersHandler
	NearbyLockers NearbyLockersHandler
	Orders        OrdersHandler
	Order         OrderHandler
}

// Server implements ServerInterface on top of the application use cases.
type Server struct {
	h Handlers
}

var _ ServerInterface = (*Server)(nil)

func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

// GetLockers handles GET /lockers.
func (s *Server) GetLockers(ctx echo.Context) error {
	views, err := s.h.ActiveLockers.Handle(ctx.Request().Context(), queries.NewGetActiveLockersQuery())
	if err != nil {
		return writeError(ctx, err)
	}

	resp := make([]Locker, 0, len(views))
	for _, v := range views {
		resp = append(resp, toLocker(v))
	}
	return ctx.JSON(http.StatusOK, resp)
}

// GetNearbyLockers handles GET /lockers/nearby.
func (s *Server) GetNearbyLockers(ctx echo.Context, params GetNearbyLockersParams) error {
	var radius float64
	if params.Radius != nil {
		radius = *params.Radius
	}

	query, err := queries.NewGetNearbyLockersQuery(params.Lat, params.Lng, radius)
	if err != nil {
		return writeError(ctx, err)
	}

	views, err := s.h.NearbyLockers.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	resp := make([]Locker, 0, len(views))
	for _, v := range views {
		l := toLocker(v.LockerView)
		distance := v.DistanceKm
		l.DistanceKm = &distance
		resp = append(resp, l)
	}
	return ctx.JSON(http.StatusOK, resp)
}

// GetOrders handles GET /orders.
func (s *Server) GetOrders(ctx echo.Context, params GetOrdersParams) error {
	actor, _ := actorFrom(ctx)

	var rawRole string
	if params.Role != nil {
		rawRole = *params.Role
	}
	role, err := queries.ParseRole(rawRole)
	if err != nil {
		return writeError(ctx, err)
	}

	var statuses []order.Status
	if params.Status != nil {
		for _, name := range *params.Status {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			st, err := order.ParseStatus(name)
			if err != nil {
				return writeError(ctx, err)
			}
			statuses = append(statuses, st)
		}
	}

	query, err := queries.NewGetOrdersQuery(actor, role, statuses...)
	if err != nil {
		return writeError(ctx, err)
	}

	views, err := s.h.Orders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	resp := make([]Order, 0, len(views))
	for _, v := range views {
		resp = append(resp, toOrder(v))
	}
	return ctx.JSON(http.StatusOK, resp)
}

// CreateOrder handles POST /orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	actor, _ := actorFrom(ctx)

	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	listingID, err := kernel.UUIDFromBytes(req.ListingID[:])
	if err != nil {
		return writeError(ctx, err)
	}
	lockerID, err := kernel.UUIDFromBytes(req.LockerID[:])
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), actor, listingID, lockerID)
	if err != nil {
		return writeError(ctx, err)
	}

	o, err := s.h.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, toOrder(queries.NewOrderView(o, actor)))
}

// GetOrder handles GET /orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderID kernel.UUID) error {
	actor, _ := actorFrom(ctx)

	query, err := queries.NewGetOrderQuery(actor, orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	view, err := s.h.Order.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toOrder(view))
}

// PayOrder handles POST /orders/{orderId}/pay.
func (s *Server) PayOrder(ctx echo.Context, orderID kernel.UUID) error {
	actor, _ := actorFrom(ctx)

	cmd, err := commands.NewPayOrderCommand(orderID, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	o, err := s.h.PayOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toOrder(queries.NewOrderView(o, actor)))
}

// SchedulePickup handles POST /orders/{orderId}/schedule.
func (s *Server) SchedulePickup(ctx echo.Context, orderID kernel.UUID) error {
	actor, _ := actorFrom(ctx)

	var req SchedulePickupRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewSchedulePickupCommand(orderID, actor, req.PickupTime)
	if err != nil {
		return writeError(ctx, err)
	}

	o, err := s.h.SchedulePickup.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toOrder(queries.NewOrderView(o, actor)))
}

// ConfirmRiderPickup handles POST /orders/{orderId}/confirm-pickup.
func (s *Server) ConfirmRiderPickup(ctx echo.Context, orderID kernel.UUID) error {
	actor, _ := actorFrom(ctx)

	cmd, err := commands.NewConfirmRiderPickupCommand(orderID, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	res, err := s.h.ConfirmRiderPickup.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ConfirmPickupResponse{
		Order:         toOrder(queries.NewOrderView(res.Order, actor)),
		PointsAwarded: res.PointsAwarded,
	})
}

// VerifyPin handles POST /orders/{orderId}/verify-pin.
func (s *Server) VerifyPin(ctx echo.Context, orderID kernel.UUID) error {
	actor, _ := actorFrom(ctx)

	var req VerifyPinRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewVerifyPinCommand(orderID, actor, req.Pin)
	if err != nil {
		return writeError(ctx, err)
	}

	o, err := s.h.VerifyPin.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, VerifyPinResponse{Order: toOrder(queries.NewOrderView(o, actor))})
}

// CancelOrder handles POST /orders/{orderId}/cancel.
func (s *Server) CancelOrder(ctx echo.Context, orderID kernel.UUID) error {
	actor, _ := actorFrom(ctx)

	var req CancelOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, actor, req.Reason)
	if err != nil {
		return writeError(ctx, err)
	}

	o, err := s.h.CancelOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toOrder(queries.NewOrderView(o, actor)))
}
