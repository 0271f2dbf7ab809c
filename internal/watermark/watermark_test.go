package watermark_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtdb-labs/xtdb/internal/types"
	"github.com/xtdb-labs/xtdb/internal/watermark"
)

func TestAwaitReturnsImmediatelyWhenAlreadyReached(t *testing.T) {
	w := watermark.New()
	w.Advance(100)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Await(ctx, 50))
	assert.Equal(t, types.Micros(100), w.Current())
}

func TestAwaitWakesOnAdvance(t *testing.T) {
	w := watermark.New()
	var wg sync.WaitGroup
	errs := make([]error, 4)
	wg.Add(len(errs))
	for i := range errs {
		i := i
		go func() {
			defer wg.Done()
			errs[i] = w.Await(context.Background(), 100)
		}()
	}

	time.Sleep(10 * time.Millisecond)
	w.Advance(100)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestAwaitTimesOutBeforeWatermarkReached(t *testing.T) {
	w := watermark.New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.Await(ctx, 100)
	require.Error(t, err)
}

func TestAdvanceIgnoresLowerValues(t *testing.T) {
	w := watermark.New()
	w.Advance(100)
	w.Advance(50)
	assert.Equal(t, types.Micros(100), w.Current())
}
