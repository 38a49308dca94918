package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// binder parses JSON bodies and runs struct validation on them.
type binder struct {
	validate *validator.Validate
}

func newBinder() binder {
	return binder{validate: validator.New()}
}

func (b binder) body(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return &RequestError{Message: "Invalid request body", Fields: map[string]string{"body": err.Error()}}
	}
	return b.check(dst)
}

func (b binder) check(v any) error {
	if err := b.validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}
