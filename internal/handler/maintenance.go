package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/invsblmen/pos-bengkel/internal/domain/maintenance"
)

// Maintenance returns due and upcoming maintenance for a vehicle. The km
// query parameter overrides the recorded odometer; values that are not
// non-negative integers yield empty lists.
func (h *Handler) Maintenance(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("id")

	ctx, cancel := h.context(r)
	defer cancel()

	var (
		rec maintenance.Recommendation
		km  int
		err error
	)
	if r.URL.Query().Has("km") {
		km = parseKm(r.URL.Query().Get("km"))
		rec, err = h.advisor.Advise(ctx, vehicleID, km)
	} else {
		rec, km, err = h.advisor.AdviseCurrent(ctx, vehicleID)
	}
	if err != nil {
		status := statusOf(err)
		if errors.Is(err, maintenance.ErrVehicleNotFound) {
			status = http.StatusNotFound
		}
		writeErrorStatus(w, r, status, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeRecommendation(e, vehicleID, km, rec) })
}
