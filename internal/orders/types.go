package orders

import "time"

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCanceled   Status = "canceled"
)

// Statuses lists every valid lifecycle state.
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCanceled}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Item is a single order line.
type Item struct {
	Type     string  `json:"type" dynamodbav:"type"`
	Quantity int     `json:"quantity" dynamodbav:"quantity"`
	Price    float64 `json:"price" dynamodbav:"price"`
}

// Location is the delivery coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude" dynamodbav:"latitude"`
	Longitude float64 `json:"longitude" dynamodbav:"longitude"`
}

// Order is the item stored in the orders DynamoDB table.
type Order struct {
	ID          string    `json:"id" dynamodbav:"order_id"` // PK, uuid
	UserID      string    `json:"userId" dynamodbav:"user_id"`
	UserName    string    `json:"userName" dynamodbav:"user_name"`
	Items       []Item    `json:"items" dynamodbav:"items"`
	TotalAmount float64   `json:"totalAmount" dynamodbav:"total_amount"`
	Status      Status    `json:"status" dynamodbav:"status"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updated_at"`
	Location    Location  `json:"location" dynamodbav:"location"`
}

// Patch carries the fields of a partial update. Nil fields stay unchanged.
// The identifier and timestamps are not patchable.
type Patch struct {
	UserID      *string
	UserName    *string
	Items       []Item
	TotalAmount *float64
	Status      *Status
	Location    *Location
}

// apply merges the patch over an existing record.
func (p Patch) apply(o *Order) {
	if p.UserID != nil {
		o.UserID = *p.UserID
	}
	if p.UserName != nil {
		o.UserName = *p.UserName
	}
	if p.Items != nil {
		o.Items = p.Items
	}
	if p.TotalAmount != nil {
		o.TotalAmount = *p.TotalAmount
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Location != nil {
		o.Location = *p.Location
	}
}
