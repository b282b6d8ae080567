// Package jobs holds the scheduled jobs of the screener.
package jobs

import (
	"context"
	"time"

	"github.com/wonny/trendscreen/internal/screener"
	"github.com/wonny/trendscreen/pkg/logger"
)

// ScreeningJobName is the registered name of the daily run.
const ScreeningJobName = "daily-screening"

// Pipeline runs one full screening invocation.
type Pipeline interface {
	Run(ctx context.Context, opts screener.RunOptions) (*screener.RunOutput, error)
}

// ScreeningJob screens the full universe on a schedule.
type ScreeningJob struct {
	pipeline Pipeline
	schedule string
	timeout  time.Duration
	logger   *logger.Logger
}

// NewScreeningJob creates the daily screening job
func NewScreeningJob(p Pipeline, schedule string, timeout time.Duration, log *logger.Logger) *ScreeningJob {
	return &ScreeningJob{
		pipeline: p,
		schedule: schedule,
		timeout:  timeout,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScreeningJob) Name() string {
	return ScreeningJobName
}

// Schedule returns the cron schedule (with seconds)
func (j *ScreeningJob) Schedule() string {
	return j.schedule
}

// Run executes one screening. Load, save and report failures are returned
// so the scheduler retries; a partial result is logged and kept.
func (j *ScreeningJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled screening")

	out, err := j.pipeline.Run(ctx, screener.RunOptions{Timeout: j.timeout})
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"run_id":   out.Result.RunID,
		"universe": out.Result.Universe,
		"ranked":   len(out.Result.Ranked),
		"report":   out.ReportPath,
	}
	if out.Result.Partial {
		fields["skipped"] = len(out.Result.Skipped)
		j.logger.WithFields(fields).Warn("Scheduled screening finished with a partial result")
		return nil
	}

	j.logger.WithFields(fields).Info("Scheduled screening completed")
	return nil
}
