package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/equityrank/internal/scheduler"
	"github.com/wonny/equityrank/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the ranking on a cron schedule",
	Long: `Schedules the daily ranking run.

Subcommands:
  start   - start the scheduler daemon
  list    - registered jobs and their next run
  run     - run a job immediately

Example:
  go run ./cmd/rank scheduler start
  go run ./cmd/rank scheduler list
  go run ./cmd/rank scheduler run daily_ranking`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and registers:
- daily_ranking: RUN_SCHEDULE in RUN_TIMEZONE (default weekdays 17:30)

Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		Args:  cobra.NoArgs,
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the scheduler with every job
func initScheduler(a *app) (*scheduler.Scheduler, error) {
	orch, err := a.orchestrator()
	if err != nil {
		return nil, fmt.Errorf("init pipeline: %w", err)
	}

	opts := scheduler.DefaultOptions()
	opts.Location = a.cfg.Location()
	sched := scheduler.New(a.log, opts)

	job := jobs.NewRankingJob(orch, a.cfg.Run.Schedule, opts.Location, a.log)
	if err := sched.AddJob(job); err != nil {
		return nil, err
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Equity Ranking Scheduler ===")

	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// cron computes next runs only once started
	sched.Start()
	defer sched.Stop()

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	fmt.Printf("Running job: %s\n", jobName)

	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	result, err := sched.RunJobSync(jobName)
	if err != nil {
		return err
	}

	if !result.Success {
		fmt.Printf("❌ %s failed after %d attempt(s): %s\n", jobName, result.Attempts, result.Error)
		return fmt.Errorf("job %s failed", jobName)
	}

	fmt.Printf("✅ %s completed in %s\n", jobName, result.Duration.Round(time.Millisecond))
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.GetAllJobs() {
		next, err := sched.NextRun(name)
		if err != nil || next.IsZero() {
			fmt.Printf("  - %s\n", name)
			continue
		}
		fmt.Printf("  - %s (next: %s)\n", name, next.Format("2006-01-02 15:04:05 MST"))
	}
}
