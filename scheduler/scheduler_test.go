package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/giygas/medicine-library/data"
	"github.com/giygas/medicine-library/entities"
	"github.com/giygas/medicine-library/labelsource"
	"github.com/giygas/medicine-library/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	labels []entities.RawLabel
	err    error
	calls  atomic.Int32
}

func (f *fakeSource) Fetch(ctx context.Context) ([]entities.RawLabel, error) {
	f.calls.Add(1)
	return f.labels, f.err
}

func label(id, brand, generic string) entities.RawLabel {
	return entities.RawLabel{
		ID: id,
		OpenFDA: entities.OpenFDAInfo{
			BrandName:   []string{brand},
			GenericName: []string{generic},
			Route:       []string{"ORAL"},
		},
		Purpose: []string{"Purpose: for the temporary relief of minor aches, pains and fever"},
	}
}

func newTestScheduler(source *fakeSource) (*Scheduler, *data.Container) {
	store := data.NewContainer()
	s := NewScheduler(store, source, validation.NewValidator(), []string{"06:00", "18:00"}).
		WithRand(rand.New(rand.NewSource(1)))
	return s, store
}

func TestRefreshBuildsCatalog(t *testing.T) {
	source := &fakeSource{labels: []entities.RawLabel{
		label("a", "Tylenol", "Acetaminophen"),
		label("b", "Excedrin", "Acetaminophen"),
		{ID: "c"}, // no brand, rejected
	}}
	s, store := newTestScheduler(source)

	require.NoError(t, s.Refresh(context.Background()))

	cat := store.GetCatalog()
	require.NotNil(t, cat)
	assert.Equal(t, 22, cat.Len())
	assert.False(t, store.GetLastUpdated().IsZero())
	assert.NoError(t, store.GetLastError())
	assert.False(t, store.IsUpdating())

	report := store.GetQualityReport()
	require.NotNil(t, report)
	assert.Equal(t, 2, report.NormalizedRecords)
	assert.Equal(t, 20, report.SeedRecords)
	assert.Equal(t, 1, report.RejectedLabels)

	tylenol, ok := cat.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"Minor Aches"}, tylenol.Uses)
}

func TestRefreshFailureKeepsPreviousCatalog(t *testing.T) {
	source := &fakeSource{labels: []entities.RawLabel{label("a", "Tylenol", "Acetaminophen")}}
	s, store := newTestScheduler(source)
	require.NoError(t, s.Refresh(context.Background()))
	previous := store.GetCatalog()

	source.labels = nil
	source.err = labelsource.ErrSourceUnavailable

	err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, labelsource.ErrSourceUnavailable)
	assert.Same(t, previous, store.GetCatalog())
	assert.ErrorIs(t, store.GetLastError(), labelsource.ErrSourceUnavailable)
	assert.False(t, store.IsUpdating())
}

func TestRefreshSkipsWhileUpdating(t *testing.T) {
	source := &fakeSource{}
	s, store := newTestScheduler(source)

	require.True(t, store.BeginUpdate())
	assert.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, int32(0), source.calls.Load())
	store.EndUpdate()
}

func TestStartSurvivesInitialFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("network down")}
	s, store := newTestScheduler(source)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Nil(t, store.GetCatalog())
	assert.Error(t, store.GetLastError())
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestStartRejectsInvalidTimes(t *testing.T) {
	store := data.NewContainer()
	s := NewScheduler(store, &fakeSource{}, validation.NewValidator(), []string{"noon"})

	assert.Error(t, s.Start())
	s.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	s, _ := newTestScheduler(&fakeSource{})
	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()
}
