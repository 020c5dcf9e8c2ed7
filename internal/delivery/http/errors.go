package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/diabetesguard/backend/internal/dataset"
	"github.com/diabetesguard/backend/internal/domain"
	"github.com/diabetesguard/backend/internal/locate"
)

// APIError is an error with an HTTP status and optional machine-readable detail
type APIError struct {
	Code    int
	Message string
	Detail  any
	cause   error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// FieldError names one failed validation rule
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// classify maps service errors to HTTP statuses. Messages for unavailable
// artifacts stay generic; the probed paths go into Detail.
func classify(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
		}
		return &APIError{Code: fiber.StatusUnprocessableEntity, Message: "Validation failed", Detail: fields, cause: err}
	}

	var notFound *locate.NotFoundError
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		return &APIError{Code: fiber.StatusBadRequest, Message: err.Error(), cause: err}
	case errors.Is(err, dataset.ErrUnknownColumn):
		return &APIError{Code: fiber.StatusNotFound, Message: err.Error(), cause: err}
	case errors.Is(err, domain.ErrDatasetUnavailable):
		e := &APIError{Code: fiber.StatusServiceUnavailable, Message: "Dataset is unavailable", cause: err}
		if errors.As(err, &notFound) {
			e.Detail = fiber.Map{"probed": notFound.Probed}
		}
		return e
	case errors.Is(err, domain.ErrArtifactNotFound), errors.Is(err, domain.ErrLoad):
		e := &APIError{Code: fiber.StatusServiceUnavailable, Message: "Prediction model is unavailable", cause: err}
		if errors.As(err, &notFound) {
			e.Detail = fiber.Map{"probed": notFound.Probed}
		}
		return e
	case errors.Is(err, domain.ErrSchemaMismatch):
		return &APIError{Code: fiber.StatusInternalServerError, Message: "Model schema mismatch", cause: err}
	}
	return &APIError{Code: fiber.StatusInternalServerError, Message: "Internal Server Error", cause: err}
}

// ErrorHandler renders every error as {"error": true, "message": ...}
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		var detail any

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			e := classify(err)
			code, message, detail = e.Code, e.Message, e.Detail
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		body := fiber.Map{
			"error":   true,
			"message": message,
		}
		if detail != nil {
			body["detail"] = detail
		}
		return c.Status(code).JSON(body)
	}
}
