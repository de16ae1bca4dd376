package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/tubeboost/internal/client/models"
)

// AuthAPI is the part of the backend the session store talks to.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	Register(ctx context.Context, creds models.Credentials) error
	Profile(ctx context.Context) (map[string]json.RawMessage, error)
}

// ContentAPI serves the public landing and article content.
type ContentAPI interface {
	HomeConfig(ctx context.Context) (*models.HomeConfig, error)
	FAQs(ctx context.Context) ([]models.FAQ, error)
	Articles(ctx context.Context) ([]models.Article, error)
}

// OrdersAPI covers the user's own orders and the admin order queue.
type OrdersAPI interface {
	Orders(ctx context.Context) ([]models.Order, error)
	CreateOrder(ctx context.Context, o models.NewOrder) (*models.Order, error)
	AdminOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id int64, u models.OrderUpdate) (*models.Order, error)
}

// Client is the complete backend contract.
type Client interface {
	AuthAPI
	ContentAPI
	OrdersAPI
}
