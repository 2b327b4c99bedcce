package loadtest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testScenario struct {
	options   Options
	setupErr  error
	newVUErr  error
	iterate   func(ctx context.Context, it *Iteration)
	mu        sync.Mutex
	vus       []int
	iters     int32
	tornDown  bool
	setupDone bool
}

func (s *testScenario) Name() string {
	return "runner-test"
}

func (s *testScenario) Options() Options {
	return s.options
}

func (s *testScenario) Setup(context.Context) error {
	s.setupDone = true
	return s.setupErr
}

func (s *testScenario) NewVU(id int) (VU, error) {
	if s.newVUErr != nil {
		return nil, s.newVUErr
	}
	s.mu.Lock()
	s.vus = append(s.vus, id)
	s.mu.Unlock()
	return s, nil
}

func (s *testScenario) Teardown(context.Context) error {
	s.tornDown = true
	return nil
}

func (s *testScenario) Iterate(ctx context.Context, it *Iteration) {
	atomic.AddInt32(&s.iters, 1)
	if s.iterate != nil {
		s.iterate(ctx, it)
	}
}

func TestRunner_Run(t *testing.T) {
	testCases := []struct {
		name     string
		scenario *testScenario
		ctx      func() (context.Context, context.CancelFunc)
		tcChecks func(t *testing.T, s *testScenario, result *Result, err error)
	}{
		{
			name:     "iterations per VU",
			scenario: &testScenario{options: Options{VUs: 3, Iterations: 4}},
			tcChecks: func(t *testing.T, s *testScenario, result *Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, []int{1, 2, 3}, s.vus)
				assert.Equal(t, int32(12), s.iters)
				assert.Equal(t, 12, result.Summary.Iterations)
				assert.True(t, s.tornDown)
			},
		},
		{
			name:     "defaults to one iteration of one VU",
			scenario: &testScenario{},
			tcChecks: func(t *testing.T, s *testScenario, result *Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, int32(1), s.iters)
				assert.Equal(t, 1, result.Summary.VUs)
			},
		},
		{
			name: "duration",
			scenario: &testScenario{
				options: Options{VUs: 2, Duration: 100 * time.Millisecond},
				iterate: func(ctx context.Context, it *Iteration) {
					it.Sleep(ctx, 10*time.Millisecond)
				},
			},
			tcChecks: func(t *testing.T, s *testScenario, result *Result, err error) {
				require.NoError(t, err)
				assert.Greater(t, result.Summary.Iterations, 2)
				assert.Less(t, result.Summary.Duration, time.Second)
			},
		},
		{
			name: "graceful stop interrupts long iterations",
			scenario: &testScenario{
				options: Options{VUs: 1, Duration: 50 * time.Millisecond, GracefulStop: 50 * time.Millisecond},
				iterate: func(ctx context.Context, it *Iteration) {
					it.Sleep(ctx, time.Minute)
				},
			},
			tcChecks: func(t *testing.T, s *testScenario, result *Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, int32(1), s.iters)
				assert.Equal(t, 0, result.Summary.Iterations)
				assert.Less(t, result.Summary.Duration, 5*time.Second)
			},
		},
		{
			name:     "setup fails",
			scenario: &testScenario{setupErr: errors.New("bootstrap failed")},
			tcChecks: func(t *testing.T, s *testScenario, result *Result, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "bootstrap failed")
				assert.Nil(t, result)
				assert.Empty(t, s.vus)
				assert.False(t, s.tornDown)
			},
		},
		{
			name:     "VU creation fails",
			scenario: &testScenario{newVUErr: errors.New("no token")},
			tcChecks: func(t *testing.T, s *testScenario, result *Result, err error) {
				require.Error(t, err)
				assert.Equal(t, int32(0), s.iters)
				assert.True(t, s.tornDown)
			},
		},
		{
			name:     "invalid thresholds",
			scenario: &testScenario{options: Options{Thresholds: map[string][]string{MetricChecks: {"fast"}}}},
			tcChecks: func(t *testing.T, s *testScenario, result *Result, err error) {
				require.Error(t, err)
				assert.False(t, s.setupDone)
			},
		},
		{
			name: "thresholds crossed",
			scenario: &testScenario{
				options: Options{VUs: 1, Iterations: 2, Thresholds: map[string][]string{MetricChecks: {"rate>0.99"}}},
				iterate: func(ctx context.Context, it *Iteration) {
					it.Check("even iteration", it.Iter%2 == 0)
				},
			},
			tcChecks: func(t *testing.T, s *testScenario, result *Result, err error) {
				assert.True(t, errors.Is(err, ErrThresholdsCrossed))
				require.NotNil(t, result)
				require.Len(t, result.Thresholds, 1)
				assert.Equal(t, 0.5, result.Thresholds[0].Actual)
				assert.False(t, result.Thresholds[0].Passed)
			},
		},
		{
			name: "thresholds passed",
			scenario: &testScenario{
				options: Options{VUs: 2, Iterations: 2, Thresholds: map[string][]string{MetricIterations: {"count==4"}}},
			},
			tcChecks: func(t *testing.T, s *testScenario, result *Result, err error) {
				require.NoError(t, err)
				assert.True(t, result.Thresholds[0].Passed)
			},
		},
		{
			name: "interrupted",
			scenario: &testScenario{
				options: Options{VUs: 1, Duration: time.Minute, GracefulStop: 10 * time.Millisecond},
				iterate: func(ctx context.Context, it *Iteration) {
					it.Sleep(ctx, 10*time.Millisecond)
				},
			},
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 50*time.Millisecond)
			},
			tcChecks: func(t *testing.T, s *testScenario, result *Result, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "interrupted")
				assert.ErrorIs(t, err, context.DeadlineExceeded)
				require.NotNil(t, result)
				assert.True(t, s.tornDown)
			},
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			var (
				ctx    context.Context
				cancel context.CancelFunc
			)
			if c.ctx != nil {
				ctx, cancel = c.ctx()
			} else {
				ctx, cancel = context.WithCancel(context.Background())
			}
			defer cancel()

			result, err := NewRunner(NewMetrics(c.name)).Run(ctx, c.scenario)
			c.tcChecks(t, c.scenario, result, err)
		})
	}
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return "unexpected status"
}

func TestRunner_ErrorsAreWrapped(t *testing.T) {
	testCases := []struct {
		name     string
		scenario *testScenario
		tcChecks func(t *testing.T, err error)
	}{
		{
			name:     "setup",
			scenario: &testScenario{setupErr: &statusError{status: 500}},
			tcChecks: func(t *testing.T, err error) {
				var statusErr *statusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, 500, statusErr.status)
			},
		},
		{
			name:     "new VU",
			scenario: &testScenario{newVUErr: &statusError{status: 401}},
			tcChecks: func(t *testing.T, err error) {
				var statusErr *statusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, 401, statusErr.status)
			},
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewRunner(NewMetrics(c.name)).Run(context.Background(), c.scenario)
			c.tcChecks(t, err)
		})
	}
}

func TestRunner_InvalidOptionsFinishMetrics(t *testing.T) {
	testCases := []struct {
		name    string
		options Options
	}{
		{name: "negative VUs", options: Options{VUs: -1}},
		{name: "invalid threshold", options: Options{Thresholds: map[string][]string{MetricChecks: {"fast"}}}},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			m := NewMetrics(c.name)
			_, err := NewRunner(m).Run(context.Background(), &testScenario{options: c.options})
			require.Error(t, err)

			// the collector routine has stopped
			select {
			case <-m.ctx.Done():
			case <-time.After(time.Second):
				t.Fatal("metrics collector still running")
			}
		})
	}
}
