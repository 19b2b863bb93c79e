package dataprocessing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loteriadash/internal/shared/testutil"
	"loteriadash/pkg/contracts/domain"
)

type countingLoader struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (l *countingLoader) Load(ctx context.Context) (*domain.Table, domain.LoadReport, error) {
	l.calls.Add(1)
	time.Sleep(l.delay)
	if l.err != nil {
		return nil, domain.LoadReport{}, l.err
	}
	table := domain.NewTable([]domain.Draw{{WinningNumber: 7}}, "memory")
	return table, domain.LoadReport{OutputRows: 1, LoadedAt: time.Now()}, nil
}

func TestCache_MemoizesUntilInvalidated(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCache(loader)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, loader.calls.Load())
	assert.False(t, cache.LoadedAt().IsZero())

	cache.Invalidate()
	assert.True(t, cache.LoadedAt().IsZero())
	_, ok := cache.Report()
	assert.False(t, ok)

	third, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.EqualValues(t, 2, loader.calls.Load())
}

func TestCache_Refresh(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCache(loader)

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	refreshed, err := cache.Refresh(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first, refreshed)
	assert.EqualValues(t, 2, loader.calls.Load())

	report, ok := cache.Report()
	assert.True(t, ok)
	assert.Equal(t, 1, report.OutputRows)
}

func TestCache_CoalescesConcurrentLoads(t *testing.T) {
	loader := &countingLoader{delay: 50 * time.Millisecond}
	cache := NewCache(loader)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, loader.calls.Load())
}

func TestCache_ErrorIsNotCached(t *testing.T) {
	boom := errors.New("boom")
	loader := &countingLoader{err: boom}
	cache := NewCache(loader)

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, boom)

	loader.err = nil
	table, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestCache_ReloadsWhenSourceChanges(t *testing.T) {
	dir := testutil.WriteDataset(t, datasetName, testutil.CleanDrawsCSV)
	path := filepath.Join(dir, datasetName)
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	cache := NewCache(NewLoader(dir, datasetName, nil, nil), WithStalenessCheck(true))
	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, first.Len())

	same, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, same)

	testutil.WriteFile(t, path, testutil.CleanDrawsCSV+"2021-01-15,4506,9000,1\n")
	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now))

	second, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, second.Len())
}

func TestCache_StaleCheckDisabled(t *testing.T) {
	dir := testutil.WriteDataset(t, datasetName, testutil.CleanDrawsCSV)
	cache := NewCache(NewLoader(dir, datasetName, nil, nil))

	first, err := cache.Get(context.Background())
	require.NoError(t, err)

	testutil.WriteFile(t, filepath.Join(dir, datasetName), testutil.CleanDrawsCSV+"2021-01-15,4506,9000,1\n")

	second, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

// gatedLoader blocks its first load until released; every load returns a
// table whose only draw carries the call number.
type gatedLoader struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (l *gatedLoader) Load(ctx context.Context) (*domain.Table, domain.LoadReport, error) {
	n := l.calls.Add(1)
	if n == 1 {
		close(l.started)
		<-l.release
	}
	table := domain.NewTable([]domain.Draw{{WinningNumber: int(n)}}, "memory")
	return table, domain.LoadReport{OutputRows: 1, LoadedAt: time.Now()}, nil
}

func TestCache_RefreshDoesNotJoinEarlierLoad(t *testing.T) {
	loader := &gatedLoader{started: make(chan struct{}), release: make(chan struct{})}
	cache := NewCache(loader)
	ctx := context.Background()

	var wg sync.WaitGroup
	var early *domain.Table
	wg.Add(1)
	go func() {
		defer wg.Done()
		early, _ = cache.Get(ctx)
	}()
	<-loader.started

	fresh, err := cache.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Row(0).WinningNumber)

	close(loader.release)
	wg.Wait()
	require.NotNil(t, early)
	assert.Equal(t, 1, early.Row(0).WinningNumber)

	// the earlier load finished last but must not replace the refreshed table
	cached, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, fresh, cached)
	assert.EqualValues(t, 2, loader.calls.Load())
}
