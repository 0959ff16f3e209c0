package subscription

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var errInvalidEmail = errors.New("invalid email")

var validate = validator.New()

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (req *SubscribeRequest) validate() error {
	if err := validate.Struct(req); err != nil {
		return errInvalidEmail
	}

	return nil
}
