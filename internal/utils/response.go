package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope every endpoint returns. Data is omitted on
// failures so clients can branch on Success alone.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// SendSuccess writes a 200 envelope.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus writes a success envelope with an explicit status,
// for handlers that create resources.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}
	if message == "" {
		message = "success"
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError writes a failure envelope. No data field is ever attached.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
	})
}
