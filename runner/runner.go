// Package runner - explains a batch of images with bounded concurrency and per-image isolation.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-camoxai/controller"
	"github.com/nvr-ai/go-camoxai/logging"
	"github.com/nvr-ai/go-camoxai/pipeline"
	"github.com/nvr-ai/go-camoxai/profiler"
	"github.com/nvr-ai/go-camoxai/report"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Stage names recorded by the runner's timer.
const (
	StageLoad    = "load"
	StageExplain = "explain"
	StageWrite   = "write"
)

// Explainer explains one sample. *pipeline.Pipeline implements it.
type Explainer interface {
	Explain(ctx context.Context, s pipeline.Sample) (*controller.Outcome, error)
}

// ExplainerFunc adapts a function to Explainer.
type ExplainerFunc func(ctx context.Context, s pipeline.Sample) (*controller.Outcome, error)

// Explain implements Explainer.
func (f ExplainerFunc) Explain(ctx context.Context, s pipeline.Sample) (*controller.Outcome, error) {
	return f(ctx, s)
}

// Job is one image of a batch. Load runs on a worker so slow I/O is spread across the pool.
type Job struct {
	Name string
	Load func(ctx context.Context) (pipeline.Sample, error)
}

// SampleJob wraps an in-memory sample.
func SampleJob(s pipeline.Sample) Job {
	return Job{
		Name: s.Name,
		Load: func(context.Context) (pipeline.Sample, error) { return s, nil },
	}
}

// Options configures a Runner.
type Options struct {
	// Workers bounds the number of images explained at once. Values below 1 mean 1.
	Workers int
	// Timeout bounds each image. Zero means no deadline.
	Timeout time.Duration
}

// Result is the outcome of one job.
type Result struct {
	Name     string
	Outcome  *controller.Outcome
	Err      error
	Duration time.Duration
}

// Summary is the outcome of a batch. Results are in job order.
type Summary struct {
	RunID   string
	Results []Result
	Stats   []report.StatsRecord
	Failed  int
	Stages  []profiler.StageStats
}

// Runner explains batches of images.
type Runner struct {
	explainer Explainer
	sink      report.Sink
	opts      Options
	log       logrus.FieldLogger
}

// New returns a Runner. sink and log may be nil.
func New(explainer Explainer, opts Options, sink report.Sink, log logrus.FieldLogger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		explainer: explainer,
		sink:      sink,
		opts:      opts,
		log:       logging.OrDiscard(log),
	}
}

// Run explains every job.
//
// A failing image is recorded in its Result and never stops the batch. The returned error is
// only set when ctx ends before the batch completes; the Summary is filled in either way.
//
// Arguments:
//   - ctx: The context of the whole batch.
//   - jobs: The images to explain.
//
// Returns:
//   - *Summary: The per-image results in job order.
//   - error: ctx.Err() when the batch was cancelled.
func (r *Runner) Run(ctx context.Context, jobs []Job) (*Summary, error) {
	runID := uuid.NewString()
	log := r.log.WithField(logging.RunIDKey, runID)
	timer := profiler.NewStageTimer()

	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, job := range jobs {
		i, job := i, job
		if gctx.Err() != nil {
			results[i] = Result{Name: job.Name, Err: gctx.Err()}
			continue
		}
		g.Go(func() error {
			results[i] = r.one(gctx, log, timer, job)
			return nil
		})
	}
	_ = g.Wait()

	summary := &Summary{RunID: runID, Results: results}
	for _, res := range results {
		if res.Err != nil {
			summary.Failed++
			continue
		}
		summary.Stats = append(summary.Stats, report.NewStatsRecord(res.Name, res.Outcome))
	}
	summary.Stages = timer.Snapshot()

	log.WithFields(logrus.Fields{
		"images": len(jobs),
		"failed": summary.Failed,
	}).Info("batch done")
	timer.Report(log)

	return summary, ctx.Err()
}

func (r *Runner) one(ctx context.Context, log *logrus.Entry, timer *profiler.StageTimer, job Job) Result {
	start := time.Now()
	log = log.WithField(logging.ImageKey, job.Name)

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	out, err := r.explain(ctx, timer, job)
	if err == nil && r.sink != nil {
		stop := timer.Start(StageWrite)
		err = r.sink.Write(job.Name, out)
		stop()
	}

	res := Result{Name: job.Name, Outcome: out, Err: err, Duration: time.Since(start)}
	if err != nil {
		res.Outcome = nil
		log.WithError(err).Warn("image failed")
		return res
	}

	log.WithFields(logrus.Fields{
		logging.LevelKey:     out.Level.String(),
		logging.WeakAreasKey: len(out.WeakAreas),
		logging.FindingsKey:  len(out.Findings),
	}).Info(out.Message())
	return res
}

// explain runs a job and gives up when ctx ends. The abandoned computation holds no shared
// state, so it is left to finish on its own.
func (r *Runner) explain(ctx context.Context, timer *profiler.StageTimer, job Job) (*controller.Outcome, error) {
	type result struct {
		out *controller.Outcome
		err error
	}
	done := make(chan result, 1)

	go func() {
		stop := timer.Start(StageLoad)
		s, err := job.Load(ctx)
		stop()
		if err != nil {
			done <- result{err: errors.Wrapf(err, "load %s", job.Name)}
			return
		}

		stop = timer.Start(StageExplain)
		out, err := r.explainer.Explain(ctx, s)
		stop()
		done <- result{out: out, err: err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "explain %s", job.Name)
	}
}
