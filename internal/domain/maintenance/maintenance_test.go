package maintenance

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var oil = Category{Key: "oil", Title: "Oil", IntervalKm: 2500}

func TestRecommend_Due(t *testing.T) {
	rec := Recommend(12500, map[string]int{"oil": 10000}, []Category{oil})

	require.Len(t, rec.Due, 1)
	assert.Empty(t, rec.Upcoming)
	assert.Equal(t, "oil", rec.Due[0].Key)
	assert.Equal(t, 0, rec.Due[0].DueInKm)
	assert.Equal(t, 2500, rec.Due[0].SinceKm)
	assert.True(t, rec.Due[0].IsDue)
	require.NotNil(t, rec.Due[0].LastDoneKm)
	assert.Equal(t, 10000, *rec.Due[0].LastDoneKm)
}

func TestRecommend_Upcoming(t *testing.T) {
	rec := Recommend(6000, map[string]int{"oil": 5000}, []Category{oil})

	assert.Empty(t, rec.Due)
	require.Len(t, rec.Upcoming, 1)
	assert.Equal(t, "oil", rec.Upcoming[0].Key)
	assert.Equal(t, 1500, rec.Upcoming[0].DueInKm)
	assert.False(t, rec.Upcoming[0].IsDue)
}

func TestRecommend_NeverDone(t *testing.T) {
	rec := Recommend(1000, nil, []Category{oil})

	require.Len(t, rec.Upcoming, 1)
	assert.Nil(t, rec.Upcoming[0].LastDoneKm)
	assert.Equal(t, 1000, rec.Upcoming[0].SinceKm)
	assert.Equal(t, 1500, rec.Upcoming[0].DueInKm)
}

func TestRecommend_LastDoneAheadOfCurrent(t *testing.T) {
	rec := Recommend(4000, map[string]int{"oil": 5000}, []Category{oil})

	require.Len(t, rec.Upcoming, 1)
	assert.Equal(t, 0, rec.Upcoming[0].SinceKm)
	assert.Equal(t, 2500, rec.Upcoming[0].DueInKm)
}

func TestRecommend_NegativeKm(t *testing.T) {
	rec := Recommend(-1, map[string]int{"oil": 0}, []Category{oil})

	assert.Empty(t, rec.Due)
	assert.Empty(t, rec.Upcoming)
	assert.NotNil(t, rec.Due)
	assert.NotNil(t, rec.Upcoming)
}

func TestRecommend_Sorted(t *testing.T) {
	categories := []Category{
		{Key: "gear", IntervalKm: 8000},
		{Key: "oil", IntervalKm: 2500},
		{Key: "air", IntervalKm: 6000},
		{Key: "coolant", IntervalKm: 20000},
		{Key: "chain", IntervalKm: 3000},
	}
	last := map[string]int{"gear": 2000, "oil": 5000, "air": 4000, "chain": 9000}

	rec := Recommend(10000, last, categories)

	dueKeys := make([]string, len(rec.Due))
	for i, in := range rec.Due {
		dueKeys[i] = in.Key
		assert.Equal(t, 0, in.DueInKm)
	}
	assert.Equal(t, []string{"gear", "oil", "air"}, dueKeys)

	require.Len(t, rec.Upcoming, 2)
	assert.Equal(t, "chain", rec.Upcoming[0].Key)
	assert.Equal(t, 2000, rec.Upcoming[0].DueInKm)
	assert.Equal(t, "coolant", rec.Upcoming[1].Key)
	assert.Equal(t, 10000, rec.Upcoming[1].DueInKm)
}

func TestDefaultCategories(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range DefaultCategories() {
		assert.Positive(t, c.IntervalKm, c.Key)
		assert.False(t, seen[c.Key], "duplicate %s", c.Key)
		seen[c.Key] = true
	}
}

type mockHistory struct {
	current int
	last    map[string]int
	err     error
}

func (m *mockHistory) CurrentOdometerKm(_ context.Context, _ string) (int, error) {
	return m.current, m.err
}

func (m *mockHistory) LastDoneKm(_ context.Context, _ string) (map[string]int, error) {
	return m.last, m.err
}

func TestAdvisor_Advise(t *testing.T) {
	a := NewAdvisor(&mockHistory{last: map[string]int{"oil": 10000}}, []Category{oil})

	rec, err := a.Advise(context.Background(), "v1", 12500)
	require.NoError(t, err)
	require.Len(t, rec.Due, 1)
	assert.Equal(t, "oil", rec.Due[0].Key)
}

func TestAdvisor_AdviseNegativeSkipsHistory(t *testing.T) {
	a := NewAdvisor(&mockHistory{err: errors.New("must not be called")}, []Category{oil})

	rec, err := a.Advise(context.Background(), "v1", -5)
	require.NoError(t, err)
	assert.Empty(t, rec.Due)
	assert.Empty(t, rec.Upcoming)
}

func TestAdvisor_AdviseCurrent(t *testing.T) {
	a := NewAdvisor(&mockHistory{current: 6000, last: map[string]int{"oil": 5000}}, []Category{oil})

	rec, km, err := a.AdviseCurrent(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 6000, km)
	require.Len(t, rec.Upcoming, 1)
	assert.Equal(t, 1500, rec.Upcoming[0].DueInKm)
}

func TestAdvisor_HistoryError(t *testing.T) {
	a := NewAdvisor(&mockHistory{err: errors.New("db down")}, []Category{oil})

	_, _, err := a.AdviseCurrent(context.Background(), "v1")
	require.Error(t, err)

	_, err = a.Advise(context.Background(), "v1", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last done km")
}
