package persistence

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPruner struct {
	before []time.Time
	err    error
}

func (r *recordingPruner) PruneLaunches(_ context.Context, before time.Time) (int64, error) {
	r.before = append(r.before, before)

	return 3, r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLaunchPruner_Prune(t *testing.T) {
	t.Parallel()

	rec := &recordingPruner{}

	p, err := NewLaunchPruner(rec, "*/5 * * * *", time.Hour, discardLogger())
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	deleted, err := p.Prune(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), deleted)
	require.Len(t, rec.before, 1)
	assert.Equal(t, now.Add(-time.Hour), rec.before[0])
}

func TestLaunchPruner_PruneError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")

	p, err := NewLaunchPruner(&recordingPruner{err: boom}, "@hourly", time.Hour, discardLogger())
	require.NoError(t, err)

	_, err = p.Prune(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestLaunchPruner_StartStop(t *testing.T) {
	t.Parallel()

	p, err := NewLaunchPruner(&recordingPruner{}, "@every 1h", time.Hour, discardLogger())
	require.NoError(t, err)

	require.NoError(t, p.Start(context.Background()))
	p.Stop(context.Background())
}

func TestNewLaunchPruner_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		schedule  string
		retention time.Duration
	}{
		{"empty schedule", "", time.Hour},
		{"bad expression", "every tuesday", time.Hour},
		{"zero retention", "@hourly", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewLaunchPruner(&recordingPruner{}, tt.schedule, tt.retention, discardLogger())
			assert.ErrorIs(t, err, ErrInvalidSchedule)
		})
	}
}
