package httpx

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/logx"
)

// ErrorHandler renders every error returned by a handler. Internal errors
// only expose their cause in development.
func ErrorHandler(development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID := c.GetRespHeader(fiber.HeaderXRequestID)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error":      fe.Message,
				"code":       "FIBER_ERROR",
				"status":     fe.Code,
				"request_id": requestID,
			})
		}

		e, ok := errx.As(err)
		if !ok {
			e = errx.Wrap(err, "An unexpected error occurred", errx.TypeInternal)
		}

		fields := logx.Fields{
			"path":       c.Path(),
			"method":     c.Method(),
			"ip":         c.IP(),
			"request_id": requestID,
			"code":       e.Code,
		}
		if e.Type == errx.TypeInternal {
			logx.WithFields(fields).Errorf("Request error: %v", err)
		} else {
			logx.WithFields(fields).Debugf("Request error: %v", err)
		}

		status := e.HTTPStatus
		if status == 0 {
			status = e.Type.DefaultStatus()
		}
		response := fiber.Map{
			"error":      e.Message,
			"code":       e.Code,
			"type":       string(e.Type),
			"status":     status,
			"request_id": requestID,
		}
		if len(e.Details) > 0 && (e.Type != errx.TypeInternal || development) {
			response["details"] = e.Details
		}
		if development && e.Err != nil {
			response["underlying_error"] = e.Err.Error()
		}
		return c.Status(status).JSON(response)
	}
}
