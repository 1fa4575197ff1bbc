package maintenance

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
)

// ErrVehicleNotFound is returned when the vehicle has no record.
var ErrVehicleNotFound = errors.New("vehicle not found")

// History supplies the vehicle data the advisor consults.
type History interface {
	// CurrentOdometerKm returns the highest odometer value recorded for the vehicle.
	CurrentOdometerKm(ctx context.Context, vehicleID string) (int, error)
	// LastDoneKm returns, per category key, the odometer value at which the
	// category was last performed. Categories never performed are absent.
	LastDoneKm(ctx context.Context, vehicleID string) (map[string]int, error)
}

// Advisor computes recommendations for stored vehicles.
type Advisor struct {
	history    History
	categories []Category
}

// NewAdvisor creates an Advisor over the given categories.
func NewAdvisor(history History, categories []Category) *Advisor {
	return &Advisor{history: history, categories: categories}
}

// Categories returns the categories the advisor evaluates.
func (a *Advisor) Categories() []Category {
	return a.categories
}

// Advise recommends maintenance for the vehicle at currentKm.
func (a *Advisor) Advise(ctx context.Context, vehicleID string, currentKm int) (Recommendation, error) {
	if currentKm < 0 {
		return Recommend(currentKm, nil, a.categories), nil
	}

	last, err := a.history.LastDoneKm(ctx, vehicleID)
	if err != nil {
		return Recommendation{}, errors.Wrap(err, "last done km")
	}
	return Recommend(currentKm, last, a.categories), nil
}

// AdviseCurrent recommends maintenance at the vehicle's recorded odometer.
// Both history reads run concurrently.
func (a *Advisor) AdviseCurrent(ctx context.Context, vehicleID string) (Recommendation, int, error) {
	var (
		current int
		last    map[string]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		km, err := a.history.CurrentOdometerKm(gctx, vehicleID)
		if err != nil {
			return errors.Wrap(err, "current odometer")
		}
		current = km
		return nil
	})
	g.Go(func() error {
		m, err := a.history.LastDoneKm(gctx, vehicleID)
		if err != nil {
			return errors.Wrap(err, "last done km")
		}
		last = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return Recommendation{}, 0, err
	}

	return Recommend(current, last, a.categories), current, nil
}
