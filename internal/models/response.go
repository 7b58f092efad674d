package models

import "time"

type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
	Price   int    `json:"price"`
	Status  string `json:"status"`
}

type StatusResponse struct {
	OrderID   string            `json:"order_id"`
	Status    string            `json:"status"`
	Assets    map[string]string `json:"assets,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type CompleteOrderResponse struct {
	OrderID string            `json:"order_id"`
	Status  string            `json:"status"`
	Assets  map[string]string `json:"assets"`
}

type RetryOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type RootResponse struct {
	Message string `json:"message"`
}
