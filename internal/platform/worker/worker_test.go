package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inovaitive/revu/internal/platform/config"
)

const testLockID int64 = 1001

type fakeAnalyzer struct {
	calls     atomic.Int32
	perCall   int
	err       error
	lastLimit int
}

func (f *fakeAnalyzer) AnalyzePending(_ context.Context, limit int) (int, error) {
	f.calls.Add(1)
	f.lastLimit = limit

	return f.perCall, f.err
}

type fakeLocks struct {
	held     bool
	err      error
	acquired atomic.Int32
	released atomic.Int32
	lastID   int64
}

func (f *fakeLocks) TryAcquireAdvisoryLock(_ context.Context, lockID int64) (func(), bool, error) {
	f.lastID = lockID

	if f.err != nil {
		return nil, false, f.err
	}

	if f.held {
		return nil, false, nil
	}

	f.acquired.Add(1)

	return func() { f.released.Add(1) }, true, nil
}

func newTestWorker(an *fakeAnalyzer, locks *fakeLocks) *AnalysisWorker {
	logger := zerolog.Nop()

	return NewAnalysisWorker(config.WorkerConfig{BatchSize: 10, PollInterval: time.Millisecond}, an, locks, testLockID, &logger)
}

func TestAnalysisWorker_Step(t *testing.T) {
	tests := []struct {
		name         string
		analyzed     int
		analyzeErr   error
		held         bool
		lockErr      error
		wantMore     bool
		wantErr      bool
		wantAnalyzes int32
		wantReleases int32
	}{
		{name: "full batch asks for more", analyzed: 10, wantMore: true, wantAnalyzes: 1, wantReleases: 1},
		{name: "partial batch waits", analyzed: 3, wantAnalyzes: 1, wantReleases: 1},
		{name: "lock held elsewhere", held: true},
		{name: "lock error", lockErr: errors.New("pool closed"), wantErr: true},
		{name: "analyze error releases lock", analyzeErr: errors.New("db down"), wantErr: true, wantAnalyzes: 1, wantReleases: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			an := &fakeAnalyzer{perCall: tt.analyzed, err: tt.analyzeErr}
			locks := &fakeLocks{held: tt.held, err: tt.lockErr}

			more, err := newTestWorker(an, locks).Step(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.wantMore, more)
			assert.Equal(t, tt.wantAnalyzes, an.calls.Load())
			assert.Equal(t, tt.wantReleases, locks.released.Load())
			assert.Equal(t, testLockID, locks.lastID)
		})
	}
}

func TestAnalysisWorker_PassesBatchSize(t *testing.T) {
	an := &fakeAnalyzer{}

	_, err := newTestWorker(an, &fakeLocks{}).Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, an.lastLimit)
}

func TestLoop_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var steps atomic.Int32

	err := Loop(ctx, Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Step: func(context.Context) (bool, error) {
			if steps.Add(1) == 3 {
				cancel()
			}

			return false, nil
		},
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(3), steps.Load())
}

func TestLoop_MoreSkipsWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var steps atomic.Int32

	start := time.Now()
	err := Loop(ctx, Config{
		Name:         "drain",
		PollInterval: time.Hour,
		Step: func(context.Context) (bool, error) {
			if steps.Add(1) == 5 {
				cancel()

				return false, nil
			}

			return true, nil
		},
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(5), steps.Load())
	assert.Less(t, time.Since(start), time.Minute)
}

func TestLoop_OnErrorCanStop(t *testing.T) {
	fatal := errors.New("fatal")

	var seen error

	err := Loop(context.Background(), Config{
		Name: "fail",
		Step: func(context.Context) (bool, error) {
			return false, fatal
		},
		OnError: func(err error) bool {
			seen = err

			return false
		},
	})

	assert.ErrorIs(t, err, fatal)
	assert.ErrorIs(t, seen, fatal)
}

func TestLoop_RecoversPanics(t *testing.T) {
	var (
		steps atomic.Int32
		errs  []error
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := Loop(ctx, Config{
		Name:         "panicky",
		PollInterval: time.Millisecond,
		Step: func(context.Context) (bool, error) {
			if steps.Add(1) == 1 {
				panic("boom")
			}

			cancel()

			return false, nil
		},
		OnError: func(err error) bool {
			errs = append(errs, err)

			return true
		},
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "boom")
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))
	assert.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
}
