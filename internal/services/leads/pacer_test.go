package leads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacer_FirstWaitIsImmediate(t *testing.T) {
	pacer := NewPacer(time.Hour)

	start := time.Now()
	assert.NoError(t, pacer.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestPacer_SpacesCalls(t *testing.T) {
	pacer := NewPacer(50 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		assert.NoError(t, pacer.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestPacer_ZeroDelayNeverBlocks(t *testing.T) {
	pacer := NewPacer(0)

	for i := 0; i < 100; i++ {
		assert.NoError(t, pacer.Wait(context.Background()))
	}
	assert.Equal(t, time.Duration(0), pacer.Delay())
}

func TestPacer_CancelledContext(t *testing.T) {
	pacer := NewPacer(time.Hour)
	assert.NoError(t, pacer.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, pacer.Wait(ctx))
}
