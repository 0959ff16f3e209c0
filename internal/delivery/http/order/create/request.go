package create

import (
	"time"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
)

type CreateOrderRequest struct {
	OrderID              models.ID  `json:"order_id"`
	ProductID            models.ID  `json:"product_id"`
	ProductName          string     `json:"product_name"`
	Quantity             int        `json:"quantity"`
	CustomerID           models.ID  `json:"customer_id"`
	CustomerUsername     string     `json:"customer_username"`
	CustomerAreaCode     string     `json:"customer_area_code"`
	ManufacturerID       models.ID  `json:"manufacturer_id"`
	ManufacturerUsername string     `json:"manufacturer_username"`
	ManufacturerEmail    string     `json:"manufacturer_email"`
	ManufacturerAreaCode string     `json:"manufacturer_area_code"`
	CreatedAt            *time.Time `json:"created_at"`
}

func (req *CreateOrderRequest) validate(now time.Time) error {
	msg := req.toDTO(now)

	return msg.Validate()
}

// toDTO stamps orders without created_at with now.
func (req *CreateOrderRequest) toDTO(now time.Time) models.OrderMessage {
	createdAt := now
	if req.CreatedAt != nil {
		createdAt = *req.CreatedAt
	}

	return models.OrderMessage{
		OrderID:              req.OrderID,
		ProductID:            req.ProductID,
		ProductName:          req.ProductName,
		Quantity:             req.Quantity,
		CustomerID:           req.CustomerID,
		CustomerUsername:     req.CustomerUsername,
		CustomerAreaCode:     req.CustomerAreaCode,
		ManufacturerID:       req.ManufacturerID,
		ManufacturerUsername: req.ManufacturerUsername,
		ManufacturerEmail:    req.ManufacturerEmail,
		ManufacturerAreaCode: req.ManufacturerAreaCode,
		CreatedAt:            createdAt.UTC(),
	}
}
