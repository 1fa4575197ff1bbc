// Package handler exposes the workshop core over JSON HTTP.
package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/metric"

	"github.com/invsblmen/pos-bengkel/internal/domain/maintenance"
	"github.com/invsblmen/pos-bengkel/internal/domain/order"
)

const maxBodyBytes = 1 << 20

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// RequestTimeout bounds each storage-backed request. Zero disables it.
	RequestTimeout time.Duration
}

// Handler serves the order and maintenance endpoints.
type Handler struct {
	orders      *order.Service
	advisor     *maintenance.Advisor
	transitions metric.Int64Counter
	timeout     time.Duration
}

// New constructs a Handler. Transition outcomes are counted on a meter from
// meterProvider.
func New(
	cfg Config,
	orders *order.Service,
	advisor *maintenance.Advisor,
	meterProvider metric.MeterProvider,
) (*Handler, error) {
	meter := meterProvider.Meter("github.com/invsblmen/pos-bengkel/internal/handler")
	transitions, err := meter.Int64Counter("bengkel.order.transitions",
		metric.WithDescription("Order status transition requests by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create transitions counter")
	}
	return &Handler{
		orders:      orders,
		advisor:     advisor,
		transitions: transitions,
		timeout:     cfg.RequestTimeout,
	}, nil
}

// Routes returns the API mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/quotes", h.Quote)
	mux.HandleFunc("POST /api/purchases", h.CreatePurchase)
	mux.HandleFunc("GET /api/purchases/{id}", h.GetPurchase)
	mux.HandleFunc("PATCH /api/purchases/{id}", h.UpdatePurchase)
	mux.HandleFunc("POST /api/service-orders", h.CreateServiceOrder)
	mux.HandleFunc("GET /api/service-orders/{id}", h.GetServiceOrder)
	mux.HandleFunc("PATCH /api/service-orders/{id}", h.UpdateServiceOrder)
	mux.HandleFunc("GET /api/vehicles/{id}/maintenance", h.Maintenance)
	return mux
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
