package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/gofiber/fiber/v2"
)

const msgInternalServerError = "Internal server error"

type envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type errorEnvelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Success bool              `json:"success"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(envelope{
		Status:  status,
		Data:    data,
		Message: message,
		Success: status < fiber.StatusBadRequest,
	})
}

// describeError maps err to the status and client message it is reported
// with. Messages of unknown errors are never exposed.
func describeError(err error) (int, string, map[string]string) {
	if appErr, ok := common.AsAppError(err); ok {
		return appErr.Status(), appErr.Message, appErr.Fields
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message, nil
	}

	return fiber.StatusInternalServerError, msgInternalServerError, nil
}

// errorHandler is the single place where errors become responses.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status, message, fields := describeError(err)

	if status >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "status", status, "error", err)
	} else {
		s.logger.Debug(c.UserContext(), "request rejected",
			"method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}

	return c.Status(status).JSON(errorEnvelope{
		Status:  status,
		Message: message,
		Success: false,
		Errors:  fields,
	})
}
