package queries

import (
	"context"
	"errors"
	"fmt"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/core/domain/model/order"
	"ecolocker/internal/pkg/errs"
	"ecolocker/internal/pkg/guard"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Role selects which side of the orders the caller wants to see.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleBuyer:
		return RoleBuyer, nil
	case RoleSeller:
		return RoleSeller, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not buyer or seller", s))
	}
}

var ErrGetOrdersQueryIsNotConstructed = errors.New(
	"GetOrdersQuery must be created via NewGetOrdersQuery constructor",
)

type GetOrdersQuery struct {
	actor    kernel.UUID
	role     Role
	statuses []order.Status
	guard    guard.ConstructorGuard
}

// NewGetOrdersQuery lists the actor's purchases (RoleBuyer) or sales (RoleSeller),
// optionally narrowed to the given statuses.
func NewGetOrdersQuery(actor kernel.UUID, role Role, statuses ...order.Status) (GetOrdersQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetOrdersQuery{}, err
	}
	if _, err := ParseRole(string(role)); err != nil {
		return GetOrdersQuery{}, err
	}
	if role == "" {
		role = RoleBuyer
	}
	for _, s := range statuses {
		if err := s.Validate(); err != nil {
			return GetOrdersQuery{}, err
		}
	}
	return GetOrdersQuery{
		actor:    actor,
		role:     role,
		statuses: statuses,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetOrdersQueryIsNotConstructed)
}

type GetOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetOrdersQueryHandler(db *gorm.DB) GetOrdersQueryHandler {
	return GetOrdersQueryHandler{db: db}
}

// Handle returns the orders newest first.
func (h GetOrdersQueryHandler) Handle(ctx context.Context, query GetOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	column := "buyer_id"
	if query.role == RoleSeller {
		column = "seller_id"
	}

	statuses := make([]string, 0, len(query.statuses))
	for _, s := range query.statuses {
		statuses = append(statuses, s.String())
	}

	var rows []orderRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT `+orderColumns+`
		FROM locker_orders
		WHERE `+column+` = ?
		  AND (cardinality(?::text[]) = 0 OR status = ANY(?::text[]))
		ORDER BY reserved_at DESC, id
	`, query.actor.Bytes(), pq.Array(statuses), pq.Array(statuses)).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(rows))
	for _, r := range rows {
		v, convErr := r.view(query.actor)
		if convErr != nil {
			return nil, convErr
		}
		views = append(views, v)
	}
	return views, nil
}
