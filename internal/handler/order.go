package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/invsblmen/pos-bengkel/internal/domain/order"
)

// Quote prices draft service items without storing them.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeQuote(data)
	if err != nil {
		writeError(w, r, &badRequestError{err: err})
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	q, err := h.orders.Quote(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeQuote(e, q) })
}

// CreatePurchase opens a pending procurement order.
func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeCreatePurchase(data)
	if err != nil {
		writeError(w, r, &badRequestError{err: err})
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	p, err := h.orders.CreatePurchase(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("purchase.id", p.ID))
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodePurchase(e, p, nil) })
}

// GetPurchase returns a procurement order with its totals.
func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	p, err := h.orders.GetPurchase(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodePurchase(e, p, nil) })
}

// UpdatePurchase applies a gated change to a procurement order.
func (h *Handler) UpdatePurchase(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	data, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeUpdatePurchase(data)
	if err != nil {
		writeError(w, r, &badRequestError{err: err})
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("purchase.id", id))

	decision, err := h.orders.UpdatePurchase(ctx, id, req)
	if req.Status != nil {
		var from string
		if decision != nil {
			from = string(decision.From)
		}
		h.countTransition(ctx, "purchase", from, string(*req.Status), err)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	adjustments := decision.Adjustments
	if adjustments == nil {
		adjustments = []order.StockAdjustment{}
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodePurchase(e, &decision.Order, adjustments) })
}

// CreateServiceOrder opens a pending service order.
func (h *Handler) CreateServiceOrder(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeCreateServiceOrder(data)
	if err != nil {
		writeError(w, r, &badRequestError{err: err})
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	o, err := h.orders.CreateServiceOrder(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("service_order.id", o.ID))
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeServiceOrder(e, o) })
}

// GetServiceOrder returns a service order with its totals.
func (h *Handler) GetServiceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	o, err := h.orders.GetServiceOrder(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeServiceOrder(e, o) })
}

// UpdateServiceOrder applies a gated change to a service order.
func (h *Handler) UpdateServiceOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	data, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeUpdateServiceOrder(data)
	if err != nil {
		writeError(w, r, &badRequestError{err: err})
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("service_order.id", id))

	decision, err := h.orders.UpdateServiceOrder(ctx, id, req)
	if req.Status != nil {
		var from string
		if decision != nil {
			from = string(decision.From)
		}
		h.countTransition(ctx, "service", from, string(*req.Status), err)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeServiceOrder(e, &decision.Order) })
}

// countTransition records the outcome of a requested status change. A
// rejected transition takes its source status from the error.
func (h *Handler) countTransition(ctx context.Context, kind, from, to string, err error) {
	result := "applied"
	if err != nil {
		result = "failed"
		var illegal *order.IllegalTransitionError
		if errors.As(err, &illegal) {
			result = "rejected"
			from = illegal.From
		}
	}
	h.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("from", from),
		attribute.String("to", to),
		attribute.String("result", result),
	))
}
