package server

import "github.com/gofiber/fiber/v2"

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse writes a uniform error envelope.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	body := errorBody{Success: false, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	return c.Status(status).JSON(body)
}

// SuccessResponse writes data with a 2xx status.
func SuccessResponse(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(data)
}
