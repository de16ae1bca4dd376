package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tubeboost/internal/client/client"
	"github.com/dmitrijs2005/tubeboost/internal/client/models"
	"github.com/dmitrijs2005/tubeboost/internal/logging"
	"github.com/google/uuid"
)

var (
	ErrInvalidVideoType = errors.New("video type must be video or shorts")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrInvalidStatus    = errors.New("unknown order status")
	ErrEmptyVideoLink   = errors.New("video link is required")
)

// ProfileRefresher reloads the user after an action that changes it
// server-side, such as spending balance.
type ProfileRefresher interface {
	FetchProfile(ctx context.Context) error
}

// OrderService places and tracks orders. Admin operations are exposed here
// too; the backend enforces who may call them.
type OrderService interface {
	List(ctx context.Context) ([]models.Order, error)
	Place(ctx context.Context, o models.NewOrder) (*models.Order, error)
	AdminList(ctx context.Context) ([]models.Order, error)
	SetStatus(ctx context.Context, id int64, status models.OrderStatus, failReason string) (*models.Order, error)
}

type orderService struct {
	api     client.OrdersAPI
	profile ProfileRefresher
	log     logging.Logger
}

func NewOrderService(api client.OrdersAPI, profile ProfileRefresher, log logging.Logger) OrderService {
	if log == nil {
		log = logging.Nop()
	}
	return &orderService{api: api, profile: profile, log: log.With("component", "orders")}
}

func (s *orderService) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.api.Orders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Place validates o, assigns a fresh task id when none is set, submits it,
// and refreshes the profile so the balance reflects the charge. A failed
// refresh is logged; the placed order is still returned.
func (s *orderService) Place(ctx context.Context, o models.NewOrder) (*models.Order, error) {
	if !o.VideoType.Valid() {
		return nil, ErrInvalidVideoType
	}
	if o.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if o.VideoLink == "" {
		return nil, ErrEmptyVideoLink
	}
	if o.TaskID == "" {
		o.TaskID = uuid.NewString()
	}

	created, err := s.api.CreateOrder(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	s.log.Info(ctx, "order placed", "task_id", o.TaskID, "quantity", o.Quantity)

	if s.profile != nil {
		if err := s.profile.FetchProfile(ctx); err != nil {
			s.log.Warn(ctx, "balance refresh after order failed", "error", err)
		}
	}

	return created, nil
}

func (s *orderService) AdminList(ctx context.Context) ([]models.Order, error) {
	orders, err := s.api.AdminOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return orders, nil
}

// SetStatus changes an order's status. failReason is sent only for failed
// orders.
func (s *orderService) SetStatus(ctx context.Context, id int64, status models.OrderStatus, failReason string) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	u := models.OrderUpdate{Status: status}
	if status == models.OrderStatusFailed && failReason != "" {
		u.FailReason = &failReason
	}

	updated, err := s.api.UpdateOrder(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}
	s.log.Info(ctx, "order status changed", "id", id, "status", status)
	return updated, nil
}
