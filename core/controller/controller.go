package controller

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Status    string           `json:"status"`
	Code      errors.ErrorCode `json:"code"`
	Message   string           `json:"message"`
	Details   any              `json:"details,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type BaseController interface {
	BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	ErrorResponse(c echo.Context, err error) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

func newErrorBody(appErrCode errors.ErrorCode, message string, details ...any) *ErrorResponse {
	body := &ErrorResponse{
		Status:    "error",
		Code:      appErrCode,
		Message:   message,
		Timestamp: time.Now(),
	}
	if len(details) > 0 {
		body.Details = details[0]
	}
	return body
}

func NewErrorResponse(httpStatusCode int, appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return echo.NewHTTPError(httpStatusCode, newErrorBody(appErrCode, message, details...))
}

// StatusFor maps an application error code to its HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData:
		return http.StatusBadRequest
	case errors.ErrNotFound, errors.ErrNotConnected:
		return http.StatusNotFound
	case errors.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *responseHandler) BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusBadRequest, appErrCode, message, details...)
}

// ErrorResponse writes err as a JSON error body. Provider failures carry the
// underlying cause in the message; other internal failures do not.
func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	httpStatus := http.StatusInternalServerError
	appCode := errors.ErrInternalServer
	msg := "internal server error"

	var ae *errors.AppError
	if stderrors.As(err, &ae) && ae != nil {
		appCode = ae.Code
		httpStatus = StatusFor(appCode)
		if ae.Message != "" {
			msg = ae.Message
		}
		if appCode == errors.ErrProvider {
			msg = ae.Error()
		}
	}

	if httpStatus >= http.StatusInternalServerError {
		logger.Error("BaseController:ErrorResponse",
			"status", httpStatus,
			"code", appCode,
			"message", msg,
			"error", err,
		)
	} else {
		logger.Warn("BaseController:ErrorResponse",
			"status", httpStatus,
			"code", appCode,
			"message", msg,
		)
	}
	return c.JSON(httpStatus, newErrorBody(appCode, msg))
}
