package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/attendance/internal/attendance"
	"github.com/kozaktomas/attendance/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only attendance API",
	Long: `Start an HTTP server exposing the attendance workbook:

  GET /api/v1/health
  GET /api/v1/config
  GET /api/v1/attendance          recorded days
  GET /api/v1/attendance/{date}   statuses for a day (YYYY-MM-DD)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	overrideInt(cmd, "port", &cfg.Web.Port)
	overrideString(cmd, "host", &cfg.Web.Host)

	workbook := attendance.NewWorkbook(cfg.Workbook.Path, cfg.Workbook.Sheet)
	if !workbook.Exists() {
		log.Warnf("workbook %s does not exist yet, attendance endpoints will return 404", workbook.Path())
	}

	server := web.NewServer(cfg, workbook)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		fmt.Println("\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Serving %s on http://%s:%d\n", workbook.Path(), cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
