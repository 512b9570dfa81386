package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/subscriptions/binder"
	"github.com/dmitrymomot/subscriptions/pkg/logger"
	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/pkg/validator"
)

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Domain errors opt into precise HTTP mapping by implementing these.
type (
	statusCoder interface {
		HTTPStatus() int
		ErrorCode() string
	}
	dataCarrier interface {
		ErrorData() any
	}
	messenger interface {
		ErrorMessage() string
	}
)

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

func WithStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// JSON renders v as the response body.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: v}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Error renders err as an ErrorBody with the status the error maps to.
// Server-side failures are logged with their cause and answered with a
// generic message; client errors are logged at info level.
func Error(err error, log *slog.Logger) Response {
	status, detail := errorDetail(err)
	if log != nil {
		if status >= http.StatusInternalServerError {
			log.Error("request failed", logger.Status(status), logger.Error(err))
		} else {
			log.Info("request rejected", logger.Status(status), slog.String("code", detail.Code), logger.Error(err))
		}
	}
	return &jsonResponse{status: status, body: ErrorBody{Error: detail}}
}

func errorDetail(err error) (int, ErrorDetail) {
	// Inputs computed between steps fail only when a sequence is miswired.
	var rie *task.ResolvedInputError
	if errors.As(err, &rie) {
		return http.StatusInternalServerError, ErrorDetail{Code: "internal_error", Message: http.StatusText(http.StatusInternalServerError)}
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		d := ErrorDetail{Code: sc.ErrorCode(), Message: err.Error()}
		var m messenger
		if errors.As(err, &m) {
			d.Message = m.ErrorMessage()
		}
		var dc dataCarrier
		if errors.As(err, &dc) {
			d.Data = dc.ErrorData()
		}
		return sc.HTTPStatus(), d
	}

	var mf *task.MissingFieldError
	switch {
	case errors.As(err, &mf):
		return http.StatusBadRequest, ErrorDetail{
			Code:    "missing_field",
			Message: err.Error(),
			Data:    map[string]string{"field": mf.Field},
		}
	case validator.IsValidationError(err):
		return http.StatusBadRequest, ErrorDetail{
			Code:    "validation_failed",
			Message: err.Error(),
			Data:    validator.ExtractValidationErrors(err).Messages(),
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, ErrorDetail{Code: "unauthorized", Message: "authentication required"}
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, ErrorDetail{Code: "unsupported_media_type", Message: err.Error()}
	case errors.Is(err, binder.ErrInvalidJSON), errors.Is(err, binder.ErrInvalidPath):
		return http.StatusBadRequest, ErrorDetail{Code: "bad_request", Message: err.Error()}
	}

	return http.StatusInternalServerError, ErrorDetail{Code: "internal_error", Message: http.StatusText(http.StatusInternalServerError)}
}
