package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/trendscreen/internal/api"
	"github.com/wonny/trendscreen/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                            - Health check
  GET  /api/v1/screening/latest           - Latest run (?limit=N)
  GET  /api/v1/screening/latest/{ticker}  - One ticker in the latest run
  GET  /api/v1/screening/runs/{id}        - Run by id
  POST /api/v1/screening/run              - Trigger a run
  GET  /api/v1/jobs                       - Job statistics (--with-scheduler)
  GET  /api/v1/jobs/{name}/history        - Job history (--with-scheduler)

Example:
  go run ./cmd/screener serve
  go run ./cmd/screener serve --port 8080 --with-scheduler`,
	RunE: runServe,
}

var (
	servePort          string
	serveWithScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default PORT)")
	serveCmd.Flags().BoolVar(&serveWithScheduler, "with-scheduler", false, "also run the daily screening job")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(out, "=== Trend Screener API Server ===")

	a, err := newApp(context.Background(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	h := api.Handlers{
		Screening: handlers.NewScreeningHandler(a.store, a.runner, a.cfg.Screen.Timeout, a.log),
	}

	if serveWithScheduler {
		sched, err := newScheduler(a)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		h.Jobs = handlers.NewJobsHandler(sched, a.log)
	}

	server := api.New(a.cfg, a.log, api.NewRouter(h, a.log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	PrintSuccess(fmt.Sprintf("Server running on http://localhost:%s", a.cfg.Port))
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Server stopped")
	return nil
}
