package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

type OrderStatus string

const (
	OrderStatusProcessed OrderStatus = "PROCESSED"
)

// ID is an identifier that is always encoded as a JSON string but also
// decodes from JSON numbers, which older producers emitted for primary keys.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}

	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

type OrderMessage struct {
	OrderID              ID        `json:"order_id" dynamodbav:"order_id" db:"order_id" validate:"required"`
	ProductID            ID        `json:"product_id" dynamodbav:"product_id" db:"product_id" validate:"required"`
	ProductName          string    `json:"product_name" dynamodbav:"product_name" db:"product_name" validate:"required"`
	Quantity             int       `json:"quantity" dynamodbav:"quantity" db:"quantity" validate:"gt=0"`
	CustomerID           ID        `json:"customer_id" dynamodbav:"customer_id" db:"customer_id" validate:"required"`
	CustomerUsername     string    `json:"customer_username" dynamodbav:"customer_username" db:"customer_username" validate:"required"`
	CustomerAreaCode     string    `json:"customer_area_code" dynamodbav:"customer_area_code" db:"customer_area_code"`
	ManufacturerID       ID        `json:"manufacturer_id" dynamodbav:"manufacturer_id" db:"manufacturer_id" validate:"required"`
	ManufacturerUsername string    `json:"manufacturer_username" dynamodbav:"manufacturer_username" db:"manufacturer_username"`
	ManufacturerEmail    string    `json:"manufacturer_email" dynamodbav:"manufacturer_email" db:"manufacturer_email" validate:"omitempty,email"`
	ManufacturerAreaCode string    `json:"manufacturer_area_code" dynamodbav:"manufacturer_area_code" db:"manufacturer_area_code"`
	CreatedAt            time.Time `json:"created_at" dynamodbav:"created_at" db:"created_at" validate:"required"`
}

var validate = validator.New()

// Validate checks the wire contract. Errors wrap ErrInvalidMessage.
func (m *OrderMessage) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %s", internalErrors.ErrInvalidMessage, err.Error())
	}

	return nil
}

// Marshal serializes the message for transport. CreatedAt is normalized to UTC.
func (m OrderMessage) Marshal() ([]byte, error) {
	m.CreatedAt = m.CreatedAt.UTC()

	return json.Marshal(m)
}

// DecodeOrderMessage parses and validates a queue body.
func DecodeOrderMessage(body []byte) (OrderMessage, error) {
	var msg OrderMessage

	if err := json.Unmarshal(body, &msg); err != nil {
		return OrderMessage{}, fmt.Errorf("%w: %s", internalErrors.ErrInvalidMessage, err.Error())
	}

	if err := msg.Validate(); err != nil {
		return OrderMessage{}, err
	}

	msg.CreatedAt = msg.CreatedAt.UTC()

	return msg, nil
}

// NotificationText is the short topic message announcing an order.
func (m *OrderMessage) NotificationText() string {
	return fmt.Sprintf("New order #%s for %s x%d by %s", m.OrderID, m.ProductName, m.Quantity, m.CustomerUsername)
}

// LogKey is the archive key of the order's processing log.
func (m *OrderMessage) LogKey() string {
	return LogKey(m.OrderID.String())
}

func LogKey(orderID string) string {
	return fmt.Sprintf("order-logs/%s.json", orderID)
}

type OrderSummary struct {
	OrderMessage
	Status OrderStatus `json:"status" dynamodbav:"status" db:"status"`
}

func NewOrderSummary(msg OrderMessage) OrderSummary {
	return OrderSummary{
		OrderMessage: msg,
		Status:       OrderStatusProcessed,
	}
}

type ProcessingLogEntry struct {
	Message    OrderMessage `json:"message"`
	DistanceKm float64      `json:"distance_km"`
	ETADays    int          `json:"eta_days"`
}
