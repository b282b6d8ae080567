package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/trendscreen/internal/scheduler"
	"github.com/wonny/trendscreen/internal/scheduler/jobs"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run screening on a cron schedule",
	Long: `Starts the scheduler daemon with the daily screening job.

The job runs on SCREEN_SCHEDULE (cron with seconds, default
"0 30 16 * * 1-5") in SCREEN_TIMEZONE. Failed runs are retried once.

The scheduler can be stopped with Ctrl+C.

Example:
  go run ./cmd/screener schedule
  go run ./cmd/screener schedule --run-now`,
	RunE: runSchedule,
}

var scheduleRunNow bool

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().BoolVar(&scheduleRunNow, "run-now", false, "run the screening job once before waiting")
}

// newScheduler builds a scheduler with the screening job registered.
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	loc, err := time.LoadLocation(a.cfg.Screen.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", a.cfg.Screen.Timezone, err)
	}

	opts := scheduler.DefaultOptions()
	opts.Location = loc
	sched := scheduler.New(opts, a.log)

	job := jobs.NewScreeningJob(a.runner, a.cfg.Screen.Schedule, a.cfg.Screen.Timeout, a.log)
	if err := sched.AddJob(job); err != nil {
		return nil, err
	}
	return sched, nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(out, "=== Trend Screener Scheduler ===")

	a, err := newApp(context.Background(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	if scheduleRunNow {
		PrintInfo("Running screening job now")
		result, err := sched.RunJob(jobs.ScreeningJobName)
		if err != nil {
			return err
		}
		if result.Success {
			PrintSuccess(fmt.Sprintf("Screening finished in %s", result.Duration.Round(time.Millisecond)))
		} else {
			PrintError("Screening failed: " + result.Error)
		}
	}

	sched.Start()

	fmt.Fprintln(out)
	PrintSuccess("Scheduler started successfully")
	fmt.Fprintln(out, "\nRegistered jobs:")
	for _, name := range sched.GetAllJobs() {
		next, err := sched.NextRun(name)
		if err != nil {
			PrintList([]string{name})
			continue
		}
		PrintList([]string{fmt.Sprintf("%s (next run %s)", name, next.Format("2006-01-02 15:04:05 MST"))})
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}
