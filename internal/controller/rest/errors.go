package rest

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

var errorKinds = []struct {
	target error
	status int
	code   string
}{
	// checked before ErrConflict: both answer 409
	{model.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{model.ErrNotFound, http.StatusNotFound, "not_found"},
	{model.ErrConflict, http.StatusConflict, "conflict"},
	{model.ErrForbidden, http.StatusForbidden, "forbidden"},
	{model.ErrUpstream, http.StatusBadGateway, "upstream_unavailable"},
	{model.ErrValidation, http.StatusBadRequest, "validation_failed"},
	{model.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
}

// toResponse maps an error to a status and body. Unknown errors become an
// opaque 500.
func toResponse(err error) (int, errorResponse) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return http.StatusBadRequest, errorResponse{
			Error:  "request validation failed",
			Code:   "validation_failed",
			Fields: fields,
		}
	}

	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		msg, ok := herr.Message.(string)
		if !ok {
			msg = http.StatusText(herr.Code)
		}
		return herr.Code, errorResponse{Error: msg, Code: "http_error"}
	}

	for _, kind := range errorKinds {
		if errors.Is(err, kind.target) {
			return kind.status, errorResponse{Error: err.Error(), Code: kind.code}
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error: "internal server error",
		Code:  "internal",
	}
}

func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := toResponse(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Request error",
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err),
			)
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(status)
		} else {
			sendErr = c.JSON(status, body)
		}
		if sendErr != nil {
			logger.Error("Failed to send error response", zap.Error(sendErr))
		}
	}
}
