package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-camoxai/controller"
	"github.com/nvr-ai/go-camoxai/images"
	"github.com/nvr-ai/go-camoxai/pipeline"
	"github.com/nvr-ai/go-camoxai/report"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobs(n int) []Job {
	out := make([]Job, n)
	for i := range out {
		out[i] = SampleJob(pipeline.Sample{Name: fmt.Sprintf("img-%02d", i)})
	}
	return out
}

func echo(ctx context.Context, s pipeline.Sample) (*controller.Outcome, error) {
	return &controller.Outcome{Name: s.Name, Level: controller.Level1, Sentences: []string{s.Name}}, nil
}

func TestRun_KeepsJobOrder(t *testing.T) {
	slowFirst := ExplainerFunc(func(ctx context.Context, s pipeline.Sample) (*controller.Outcome, error) {
		if s.Name == "img-00" {
			time.Sleep(20 * time.Millisecond)
		}
		return echo(ctx, s)
	})

	summary, err := New(slowFirst, Options{Workers: 4}, nil, nil).Run(context.Background(), jobs(8))
	require.NoError(t, err)
	require.Len(t, summary.Results, 8)
	for i, res := range summary.Results {
		require.NoError(t, res.Err)
		assert.Equal(t, fmt.Sprintf("img-%02d", i), res.Name)
		assert.Equal(t, res.Name, res.Outcome.Name)
	}
	assert.Len(t, summary.Stats, 8)
	assert.Zero(t, summary.Failed)

	_, err = uuid.Parse(summary.RunID)
	assert.NoError(t, err)
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	explainer := ExplainerFunc(func(ctx context.Context, s pipeline.Sample) (*controller.Outcome, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return echo(ctx, s)
	})

	_, err := New(explainer, Options{Workers: 2}, nil, nil).Run(context.Background(), jobs(10))
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRun_IsolatesFailures(t *testing.T) {
	boom := errors.New("corrupt map")
	explainer := ExplainerFunc(func(ctx context.Context, s pipeline.Sample) (*controller.Outcome, error) {
		if s.Name == "img-01" {
			return nil, boom
		}
		return echo(ctx, s)
	})

	batch := jobs(3)
	batch = append(batch, Job{
		Name: "unreadable",
		Load: func(context.Context) (pipeline.Sample, error) { return pipeline.Sample{}, errors.New("no such file") },
	})

	summary, err := New(explainer, Options{Workers: 2}, nil, nil).Run(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, boom, summary.Results[1].Err)
	assert.Nil(t, summary.Results[1].Outcome)
	assert.Contains(t, summary.Results[3].Err.Error(), "load unreadable")
	assert.NoError(t, summary.Results[2].Err)

	var names []string
	for _, s := range summary.Stats {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"img-00", "img-02"}, names)
}

func TestRun_PerImageTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	explainer := ExplainerFunc(func(ctx context.Context, s pipeline.Sample) (*controller.Outcome, error) {
		if s.Name == "img-00" {
			<-release // ignores ctx on purpose
		}
		return echo(ctx, s)
	})

	summary, err := New(explainer, Options{Workers: 2, Timeout: 20 * time.Millisecond}, nil, nil).
		Run(context.Background(), jobs(2))
	require.NoError(t, err)
	assert.True(t, errors.Is(summary.Results[0].Err, context.DeadlineExceeded))
	assert.NoError(t, summary.Results[1].Err)
	assert.Equal(t, 1, summary.Failed)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := New(ExplainerFunc(echo), Options{Workers: 1}, nil, nil).Run(ctx, jobs(3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, summary.Failed)
}

func TestRun_WithPipelineAndSink(t *testing.T) {
	p, err := pipeline.New(pipeline.DefaultOptions(), nil)
	require.NoError(t, err)

	present := pipeline.Sample{Name: "present.png", Width: 8, Height: 8, MaxValue: 1, Confidence: images.NewGrid(8, 8)}
	present.Confidence.Set(3, 3, 1)
	absent := pipeline.Sample{Name: "absent.png", Width: 8, Height: 8, MaxValue: 1}

	sink := report.NewMemorySink()
	summary, err := New(p, Options{Workers: 2, Timeout: time.Second}, sink, nil).
		Run(context.Background(), []Job{SampleJob(present), SampleJob(absent)})
	require.NoError(t, err)

	assert.Equal(t, []report.StatsRecord{
		{Name: "present.png", Obj: 1, Weak: 0},
		{Name: "absent.png", Obj: 0, Weak: 0},
	}, summary.Stats)
	assert.ElementsMatch(t, []string{"present.png", "absent.png"}, sink.Names())

	r, ok := sink.Get("absent.png")
	require.True(t, ok)
	assert.Equal(t, "Decision for absent.png:\nNo object present.", r.Message)

	var stages []string
	for _, s := range summary.Stages {
		stages = append(stages, s.Name)
	}
	assert.Equal(t, []string{StageExplain, StageLoad, StageWrite}, stages)
}
