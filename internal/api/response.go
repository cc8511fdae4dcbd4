package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
)

const msgInternal = "error interno del servidor"

// envelope wraps every response body.
type envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Details   []string  `json:"details,omitempty"`
	Stack     string    `json:"stack,omitempty"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(envelope{Success: true, Data: data, Timestamp: time.Now()})
}

func created(c *fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusCreated).JSON(envelope{Success: true, Data: data, Message: message, Timestamp: time.Now()})
}

func deleted(c *fiber.Ctx, message string) error {
	return c.JSON(envelope{Success: true, Message: message, Timestamp: time.Now()})
}

// errorHandler renders every error returned by a handler. Stacks are only exposed in development.
func errorHandler(log *logrus.Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := apperr.Status(err)
		body := envelope{Error: err.Error(), Timestamp: time.Now()}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			body.Error = fe.Message
		}
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			body.Error = ve.Message
			body.Details = ve.Details()
		}

		if status >= fiber.StatusInternalServerError {
			log.WithField("requestId", requestID(c)).
				WithField("method", c.Method()).
				WithField("path", c.Path()).
				WithError(err).Error("request failed")
			if !development {
				body.Error = msgInternal
			}
		}
		if development && fe == nil {
			body.Stack = apperr.Stack(err)
		}
		return c.Status(status).JSON(body)
	}
}

// requestLogger logs one line per request with its final status.
func requestLogger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		log.WithFields(logrus.Fields{
			"requestId": requestID(c),
			"method":    c.Method(),
			"path":      c.Path(),
			"status":    c.Response().StatusCode(),
			"latency":   time.Since(start).String(),
		}).Info("http request")
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
