package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rightstroke/internal/gesture"
)

func TestRecordingExecutor(t *testing.T) {
	exec := &RecordingExecutor{}

	require.NoError(t, exec.Execute(context.Background(), gesture.ActionReload))
	require.NoError(t, exec.Execute(context.Background(), gesture.ActionBack))

	assert.Equal(t, []gesture.Action{gesture.ActionReload, gesture.ActionBack}, exec.Actions())
	assert.Equal(t, int64(0), exec.Calls()[0].Cycle)
}

func TestRecordingExecutor_Err(t *testing.T) {
	boom := errors.New("boom")
	exec := &RecordingExecutor{Err: boom}

	err := exec.Execute(context.Background(), gesture.ActionClose)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []gesture.Action{gesture.ActionClose}, exec.Actions())
}

func TestRecordingTrail(t *testing.T) {
	trail := &RecordingTrail{}
	points := []gesture.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}

	trail.Begin()
	trail.Update(points)
	points[0].X = 99
	trail.End()

	assert.Equal(t, []string{"begin", "update:2", "end"}, trail.Calls())
	assert.Equal(t, []gesture.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, trail.LastPoints())
}

func TestRecordingToast(t *testing.T) {
	toast := &RecordingToast{}
	assert.Empty(t, toast.Shown())

	toast.Show(gesture.ActionNextTab)
	assert.Equal(t, []gesture.Action{gesture.ActionNextTab}, toast.Shown())
}
