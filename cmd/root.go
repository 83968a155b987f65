package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/attendance/internal/config"
	"github.com/kozaktomas/attendance/internal/logger"
)

var log = logger.Log

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Mark attendance by recognizing faces from a live camera",
	Long: `Attendance enrolls people from a directory of labeled reference photos
(known_faces/<name>/<photos>), watches a camera, recognizes the faces it
sees and records who was present, and when, in an xlsx workbook with one
column per day.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides ATTENDANCE_LOG_LEVEL")
	rootCmd.PersistentFlags().String("workbook", "", "Attendance workbook path (default from ATTENDANCE_WORKBOOK or attendance.xlsx)")
	rootCmd.PersistentFlags().String("sheet", "", "Worksheet name (default from ATTENDANCE_SHEET or Attendance)")
	rootCmd.PersistentFlags().String("known-faces", "", "Known faces directory (default from ATTENDANCE_KNOWN_FACES_DIR or known_faces)")
}

// loadConfig loads the configuration and applies the global flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	overrideString(cmd, "workbook", &cfg.Workbook.Path)
	overrideString(cmd, "sheet", &cfg.Workbook.Sheet)
	overrideString(cmd, "known-faces", &cfg.Enrollment.KnownFacesDir)
	return cfg
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	level := config.Load().LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger.Setup(level)
}
