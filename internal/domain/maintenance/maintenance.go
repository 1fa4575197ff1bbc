// Package maintenance derives maintenance-due recommendations for a vehicle
// from its odometer reading and per-category service intervals.
package maintenance

import (
	"cmp"
	"slices"
)

// Category is a class of recurring maintenance work.
type Category struct {
	Key        string
	Title      string
	IntervalKm int
}

// DefaultCategories returns the workshop's reference intervals.
func DefaultCategories() []Category {
	return []Category{
		{Key: "engine_oil", Title: "Engine oil", IntervalKm: 2500},
		{Key: "gear_oil", Title: "Gear oil", IntervalKm: 8000},
		{Key: "air_filter", Title: "Air filter", IntervalKm: 6000},
		{Key: "spark_plug", Title: "Spark plug", IntervalKm: 8000},
		{Key: "brake_pad", Title: "Brake pads", IntervalKm: 10000},
		{Key: "drive_chain", Title: "Drive chain", IntervalKm: 15000},
		{Key: "coolant", Title: "Coolant", IntervalKm: 20000},
	}
}

// Insight is the maintenance state of one category for one vehicle.
type Insight struct {
	Key        string
	Title      string
	IntervalKm int
	// LastDoneKm is nil when the category was never performed.
	LastDoneKm *int
	SinceKm    int
	DueInKm    int
	IsDue      bool
}

// Recommendation partitions insights into due and upcoming work.
type Recommendation struct {
	Due      []Insight
	Upcoming []Insight
}

// Recommend evaluates every category against currentKm. lastDoneKm maps a
// category key to the odometer value at which it was last performed; missing
// keys count as never performed. A negative currentKm yields an empty
// recommendation.
func Recommend(currentKm int, lastDoneKm map[string]int, categories []Category) Recommendation {
	rec := Recommendation{
		Due:      []Insight{},
		Upcoming: []Insight{},
	}
	if currentKm < 0 {
		return rec
	}

	for _, c := range categories {
		in := evaluate(currentKm, lastDoneKm, c)
		if in.IsDue {
			rec.Due = append(rec.Due, in)
		} else {
			rec.Upcoming = append(rec.Upcoming, in)
		}
	}

	byDueIn := func(a, b Insight) int { return cmp.Compare(a.DueInKm, b.DueInKm) }
	slices.SortStableFunc(rec.Due, byDueIn)
	slices.SortStableFunc(rec.Upcoming, byDueIn)

	return rec
}

func evaluate(currentKm int, lastDoneKm map[string]int, c Category) Insight {
	in := Insight{
		Key:        c.Key,
		Title:      c.Title,
		IntervalKm: c.IntervalKm,
	}

	last := 0
	if km, ok := lastDoneKm[c.Key]; ok {
		last = km
		in.LastDoneKm = &km
	}

	in.SinceKm = max(currentKm-last, 0)
	in.DueInKm = max(c.IntervalKm-in.SinceKm, 0)
	in.IsDue = in.SinceKm >= c.IntervalKm
	return in
}
