package validation

import (
	"github.com/klynn-app/orders-api/internal/orders"
)

// ItemPayload is a single order line as received on the wire. Numeric fields
// are pointers so an explicit zero is distinguishable from an absent value.
type ItemPayload struct {
	Type     string   `json:"type" validate:"required"`
	Quantity *int     `json:"quantity" validate:"required,min=1"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
}

type LocationPayload struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

// CreateOrderRequest is the payload for POST /api/orders.
type CreateOrderRequest struct {
	UserID      string           `json:"userId" validate:"required"`
	UserName    string           `json:"userName" validate:"required"`
	Items       []ItemPayload    `json:"items" validate:"omitempty,dive"`
	TotalAmount *float64         `json:"totalAmount" validate:"required,gte=0"`
	Status      orders.Status    `json:"status" validate:"omitempty,oneof=pending processing shipped delivered canceled"`
	Location    *LocationPayload `json:"location" validate:"required"`
}

// Order converts a validated request into a domain order. Callers must have
// run validation first; pointer fields are dereferenced unchecked.
func (r CreateOrderRequest) Order() orders.Order {
	o := orders.Order{
		UserID:      r.UserID,
		UserName:    r.UserName,
		Items:       toItems(r.Items),
		TotalAmount: *r.TotalAmount,
		Status:      r.Status,
		Location: orders.Location{
			Latitude:  *r.Location.Latitude,
			Longitude: *r.Location.Longitude,
		},
	}
	return o
}

// UpdateOrderRequest is the payload for PUT /api/orders/:id. Every field is
// optional; absent fields leave the stored record unchanged.
type UpdateOrderRequest struct {
	UserID      *string          `json:"userId" validate:"omitempty,min=1"`
	UserName    *string          `json:"userName" validate:"omitempty,min=1"`
	Items       []ItemPayload    `json:"items" validate:"omitempty,dive"`
	TotalAmount *float64         `json:"totalAmount" validate:"omitempty,gte=0"`
	Status      *orders.Status   `json:"status" validate:"omitempty,oneof=pending processing shipped delivered canceled"`
	Location    *LocationPayload `json:"location" validate:"omitempty"`
}

// Patch converts a validated request into a partial update.
func (r UpdateOrderRequest) Patch() orders.Patch {
	p := orders.Patch{
		UserID:      r.UserID,
		UserName:    r.UserName,
		TotalAmount: r.TotalAmount,
		Status:      r.Status,
	}
	if r.Items != nil {
		p.Items = toItems(r.Items)
	}
	if r.Location != nil {
		p.Location = &orders.Location{
			Latitude:  *r.Location.Latitude,
			Longitude: *r.Location.Longitude,
		}
	}
	return p
}

func toItems(payloads []ItemPayload) []orders.Item {
	items := make([]orders.Item, 0, len(payloads))
	for _, it := range payloads {
		items = append(items, orders.Item{
			Type:     it.Type,
			Quantity: *it.Quantity,
			Price:    *it.Price,
		})
	}
	return items
}
