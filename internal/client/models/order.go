package models

import "time"

type VideoType string

const (
	VideoTypeVideo  VideoType = "video"
	VideoTypeShorts VideoType = "shorts"
)

type OrderStatus string

const (
	OrderStatusWaiting    OrderStatus = "waiting"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusSuccess    OrderStatus = "success"
	OrderStatusFailed     OrderStatus = "failed"
)

// Valid reports whether s is one of the statuses the backend accepts.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusWaiting, OrderStatusInProgress, OrderStatusSuccess, OrderStatusFailed:
		return true
	}
	return false
}

func (t VideoType) Valid() bool {
	return t == VideoTypeVideo || t == VideoTypeShorts
}

// OrderCostPerUnit is what the backend charges per unit of quantity.
const OrderCostPerUnit = 2

type Order struct {
	ID         int64       `json:"id"`
	User       int64       `json:"user"`
	TaskID     string      `json:"task_id"`
	VideoType  VideoType   `json:"video_type"`
	VideoLink  string      `json:"video_link"`
	Title      string      `json:"title"`
	Quantity   int         `json:"quantity"`
	Status     OrderStatus `json:"status"`
	FailReason *string     `json:"fail_reason"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewOrder is the body of POST /api/orders/.
type NewOrder struct {
	TaskID    string    `json:"task_id"`
	VideoType VideoType `json:"video_type"`
	VideoLink string    `json:"video_link"`
	Title     string    `json:"title"`
	Quantity  int       `json:"quantity"`
}

// Cost is the balance the order will consume.
func (o NewOrder) Cost() Amount {
	return Amount(o.Quantity * OrderCostPerUnit)
}

// OrderUpdate is the body of PATCH /api/admin/orders/{id}/.
type OrderUpdate struct {
	Status     OrderStatus `json:"status"`
	FailReason *string     `json:"fail_reason,omitempty"`
}
