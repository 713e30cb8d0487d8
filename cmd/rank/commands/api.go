package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/equityrank/internal/api"
	"github.com/wonny/equityrank/internal/api/handlers"
	"github.com/wonny/equityrank/internal/metrics"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the read API server",
	Long: `Serves the latest ranking, per-date results and ticker history over HTTP.

Endpoints:
  GET  /health                   - Health check
  GET  /metrics                  - Prometheus metrics
  GET  /api/ranking/latest       - Latest run (?limit=N)
  GET  /api/ranking/{date}       - Run for YYYY-MM-DD
  GET  /api/history/{ticker}     - Ledger rows for one ticker
  POST /api/runs                 - Trigger a run (--allow-runs)

Example:
  go run ./cmd/rank api
  go run ./cmd/rank api --port 8080 --allow-runs`,
	Args: cobra.NoArgs,
	RunE: runAPIServer,
}

var (
	apiPort      string
	apiAllowRuns bool
)

const runRequestTimeout = 5 * time.Minute

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: PORT)")
	apiCmd.Flags().BoolVar(&apiAllowRuns, "allow-runs", false, "enable POST /api/runs")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Equity Ranking API Server ===")

	// 1. Wire dependencies
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":       a.cfg.Port,
		"env":        a.cfg.Env,
		"allow_runs": apiAllowRuns,
	}).Info("Initializing API server")

	// 2. Register metrics
	metrics.InitRegistry()

	// 3. Create handlers
	h := api.Handlers{
		Ranking: handlers.NewRankingHandler(a.store, a.log),
		History: handlers.NewHistoryHandler(a.ledger, a.log),
	}
	if apiAllowRuns {
		orch, err := a.orchestrator()
		if err != nil {
			return fmt.Errorf("init pipeline: %w", err)
		}
		h.Runs = handlers.NewRunHandler(orch, runRequestTimeout, a.log)
	}

	// 4. Create router and server
	server := api.New(a.cfg, a.log, api.NewRouter(h, a.log))

	// 5. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
