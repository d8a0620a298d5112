package jobs

import (
	"context"
	"log/slog"
	"time"

	"ecolocker/internal/core/ports"
	"ecolocker/internal/observability"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultSweepTimeout bounds one sweep run and the lease that guards it.
const DefaultSweepTimeout = 5 * time.Minute

// sweepFunc runs one sweep and reports how many rows it changed.
type sweepFunc func(ctx context.Context) (int, error)

// SweepJob runs a sweep on a cron schedule.
type SweepJob struct {
	name     string
	schedule string
	run      sweepFunc
	lease    ports.SweepLease
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func newSweepJob(name, schedule string, run sweepFunc, lease ports.SweepLease, logger *slog.Logger) *SweepJob {
	logger = logger.With("component", name+"_job")
	return &SweepJob{
		name:     name,
		schedule: schedule,
		run:      run,
		lease:    lease,
		timeout:  DefaultSweepTimeout,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{logger}),
			cron.SkipIfStillRunning(cronLogger{logger}),
		)),
		logger: logger,
	}
}

// Start registers the sweep and starts its scheduler. Runs derive from ctx.
func (j *SweepJob) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.tick(ctx) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(ctx, "Sweep job started", "schedule", j.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to return.
func (j *SweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Sweep job stopped")
}

func (j *SweepJob) tick(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, j.timeout)
	defer cancel()

	release, ok, err := j.lease.TryAcquire(ctx, j.name, j.timeout)
	if err != nil {
		j.logger.WarnContext(ctx, "Sweep lease unavailable", "error", err)
		return
	}
	if !ok {
		j.logger.DebugContext(ctx, "Sweep skipped, lease held elsewhere")
		return
	}
	defer release()

	ctx, span := observability.Tracer().Start(ctx, "sweep."+j.name, trace.WithAttributes(
		attribute.String("sweep", j.name),
	))
	defer span.End()

	started := time.Now()
	processed, err := j.run(ctx)
	observability.SweepDuration.WithLabelValues(j.name).Observe(time.Since(started).Seconds())
	observability.SweepProcessed.WithLabelValues(j.name).Add(float64(processed))
	span.SetAttributes(attribute.Int("sweep.processed", processed))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		j.logger.ErrorContext(ctx, "Sweep failed", "error", err, "processed", processed)
		return
	}
	if processed > 0 {
		j.logger.InfoContext(ctx, "Sweep finished", "processed", processed)
	}
}

// cronLogger routes robfig/cron diagnostics to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
