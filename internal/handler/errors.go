package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/invsblmen/pos-bengkel/internal/domain/catalog"
	"github.com/invsblmen/pos-bengkel/internal/domain/maintenance"
	"github.com/invsblmen/pos-bengkel/internal/domain/order"
	"github.com/invsblmen/pos-bengkel/internal/domain/pricing"
)

// badRequestError marks a body that could not be decoded.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return "invalid request body: " + e.err.Error() }

func (e *badRequestError) Unwrap() error { return e.err }

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var (
		badReq     *badRequestError
		illegal    *order.IllegalTransitionError
		locked     *order.LockedError
		missing    *order.MissingRequiredFieldError
		regression *order.OdometerRegressionError
		invalid    *pricing.InvalidLineItemError
		notFound   *catalog.NotFoundError
	)
	switch {
	case errors.As(err, &badReq), errors.Is(err, order.ErrEmptyItems):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &illegal), errors.As(err, &locked), errors.Is(err, order.ErrStatusConflict):
		return http.StatusConflict
	case errors.As(err, &missing), errors.As(err, &regression),
		errors.As(err, &invalid), errors.As(err, &notFound),
		errors.Is(err, maintenance.ErrVehicleNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorStatus(w, r, statusOf(err), err)
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	message := err.Error()
	lg := zctx.From(r.Context())
	if status >= http.StatusInternalServerError {
		lg.Error("Request failed", zap.Error(err))
		message = "internal error"
	} else {
		lg.Info("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}
