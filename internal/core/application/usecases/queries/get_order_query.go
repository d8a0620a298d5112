package queries

import (
	"context"
	"errors"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/pkg/errs"
	"ecolocker/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

type GetOrderQuery struct {
	actor   kernel.UUID
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(actor, orderID kernel.UUID) (GetOrderQuery, error) {
	if err := errors.Join(actor.Validate(), orderID.Validate()); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns the order if the actor is its buyer or seller. Anyone else gets the
// same ObjectNotFoundError as for a missing order.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	var rows []orderRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT `+orderColumns+`
		FROM locker_orders
		WHERE id = ? AND (buyer_id = ? OR seller_id = ?)
	`, query.orderID.Bytes(), query.actor.Bytes(), query.actor.Bytes()).Scan(&rows).Error
	if err != nil {
		return OrderView{}, err
	}
	if len(rows) == 0 {
		return OrderView{}, errs.NewObjectNotFoundError("orderId", query.orderID.String())
	}

	return rows[0].view(query.actor)
}
