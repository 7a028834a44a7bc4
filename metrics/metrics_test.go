package metrics_test

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvgds/metrics"
)

func TestProfiler_ConcurrentAdd(t *testing.T) {
	p := metrics.NewProfiler()
	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Add("rows", 1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(workers*100), p.Counter("rows"))
}

func TestProfiler_TimersAndProgress(t *testing.T) {
	p := metrics.NewProfiler()
	p.Observe("edge_compute", 2*time.Millisecond)
	p.Observe("edge_compute", 3*time.Millisecond)
	require.Equal(t, 5*time.Millisecond, p.Timer("edge_compute"))

	p.UpdateProgress(1.5)
	require.Equal(t, 1.0, p.Progress())
	p.UpdateProgress(-1)
	require.Equal(t, 0.0, p.Progress())

	p.Add("b", 1)
	p.Add("a", 1)
	require.Equal(t, []string{"a", "b"}, p.CounterNames())
}

func TestProfiler_NilIsNoop(t *testing.T) {
	var p *metrics.Profiler
	p.Add("x", 1)
	p.Observe("x", time.Second)
	p.UpdateProgress(0.5)
	require.Zero(t, p.Counter("x"))
	require.Zero(t, p.Timer("x"))
	require.Zero(t, p.Progress())
	require.Nil(t, p.CounterNames())
}

func TestCollectors_Increment(t *testing.T) {
	before := testutil.ToFloat64(metrics.DenseSwitches)
	metrics.DenseSwitches.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(metrics.DenseSwitches))

	c := metrics.PathsEmitted.WithLabelValues("test")
	before = testutil.ToFloat64(c)
	c.Add(3)
	require.Equal(t, before+3, testutil.ToFloat64(c))
}
