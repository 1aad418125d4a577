package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/persistence"
	"github.com/dukex/hl7autoct/pkg/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndFindLaunch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := memory.NewPersistence()

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, p.SaveLaunch(ctx, &models.Launch{Handle: "arn:run-1", RequestID: "req-1", LaunchedAt: at}))

	launch, err := p.LaunchByHandle(ctx, "arn:run-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", launch.RequestID)
	assert.Equal(t, at, launch.LaunchedAt)

	_, err = p.LaunchByHandle(ctx, "arn:run-2")
	assert.True(t, persistence.IsLaunchNotFound(err))
}

func TestPruneLaunches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := memory.NewPersistence()
	now := time.Now()

	require.NoError(t, p.SaveLaunch(ctx, &models.Launch{Handle: "old", LaunchedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, p.SaveLaunch(ctx, &models.Launch{Handle: "new", LaunchedAt: now}))

	deleted, err := p.PruneLaunches(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = p.LaunchByHandle(ctx, "old")
	assert.True(t, persistence.IsLaunchNotFound(err))

	_, err = p.LaunchByHandle(ctx, "new")
	assert.NoError(t, err)
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := memory.NewPersistence()

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			handle := models.ExecutionHandle("arn:run-" + string(rune('a'+i)))
			assert.NoError(t, p.SaveLaunch(ctx, &models.Launch{Handle: handle, LaunchedAt: time.Now()}))

			_, err := p.LaunchByHandle(ctx, handle)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
}
