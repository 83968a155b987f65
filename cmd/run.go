package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/attendance/internal/attendance"
	"github.com/kozaktomas/attendance/internal/camera"
	"github.com/kozaktomas/attendance/internal/constants"
	"github.com/kozaktomas/attendance/internal/enroll"
	"github.com/kozaktomas/attendance/internal/facematch"
	"github.com/kozaktomas/attendance/internal/recognizer"
	"github.com/kozaktomas/attendance/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the camera and mark recognized people present",
	Long: `Open the camera, recognize faces in every frame and record each enrolled
person as PRESENT (with the check-in time) the first time they are seen.
Press 'q' in the preview window, or Ctrl+C, to stop.

Matching strategies:
  nearest  closest enrolled face, accepted when distance < tolerance
  first    first enrolled face with distance <= tolerance`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("strategy", constants.DefaultStrategy, "Matching strategy: nearest or first")
	runCmd.Flags().String("index", constants.DefaultIndex, "Matcher backend: linear or hnsw (hnsw supports nearest only)")
	runCmd.Flags().Float64("tolerance", constants.DefaultTolerance, "Maximum encoding distance for a match")
	runCmd.Flags().Int("camera", constants.DefaultCameraDevice, "Video capture device")
	runCmd.Flags().Float64("scale", constants.DefaultFrameScale, "Frame downscale factor before detection (0-1]")
	runCmd.Flags().Bool("no-record", false, "Recognize and display only, do not write the workbook")
	runCmd.Flags().Bool("fill-absent", false, "Mark everyone ABSENT when today's column is created")
	runCmd.Flags().Bool("metrics", false, "Print performance metrics on exit")
	runCmd.Flags().Bool("headless", false, "Run without a preview window")
	runCmd.Flags().Int("max-frames", 0, "Stop after this many frames (0 = unlimited)")
	runCmd.Flags().Bool("no-cache", false, "Ignore the enrollment cache")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	overrideFloat64(cmd, "tolerance", &cfg.Recognition.Tolerance)
	overrideInt(cmd, "camera", &cfg.Camera.Device)
	overrideFloat64(cmd, "scale", &cfg.Camera.Scale)

	if cfg.Camera.Scale <= 0 || cfg.Camera.Scale > 1 {
		return fmt.Errorf("--scale must be in (0, 1], got %v", cfg.Camera.Scale)
	}

	strategy, err := facematch.ParseStrategy(mustGetString(cmd, "strategy"))
	if err != nil {
		return err
	}
	record := !mustGetBool(cmd, "no-record")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := recognizer.New(cfg.Recognition.ModelsDir, cfg.Recognition.CNN)
	if err != nil {
		return err
	}
	defer rec.Close()

	gallery, _, err := loadGallery(ctx, cfg, rec, galleryOptions{useCache: !mustGetBool(cmd, "no-cache")})
	switch {
	case errors.Is(err, enroll.ErrNoFaces):
		log.Warn("no known faces enrolled, every face will be Unknown")
	case err != nil:
		return fmt.Errorf("enrollment failed: %w", err)
	}
	printEnrollSummary(gallery)

	matcher, err := facematch.NewMatcher(mustGetString(cmd, "index"), strategy,
		gallery.Encodings, gallery.Names, cfg.Recognition.Tolerance)
	if err != nil {
		return err
	}

	workbook := attendance.NewWorkbook(cfg.Workbook.Path, cfg.Workbook.Sheet)
	if record {
		res, err := workbook.Prepare(gallery.People(), time.Now(), mustGetBool(cmd, "fill-absent"))
		if err != nil {
			return fmt.Errorf("failed to prepare attendance workbook: %w", err)
		}
		printPrepareResult(workbook, res)
	}

	sess := session.New(matcher, workbook, session.Options{
		Scale:  cfg.Camera.Scale,
		Record: record,
	})
	sess.Log().WithField("strategy", strategy).Infof("recognition session started with %d encodings", matcher.Len())

	stats, err := camera.Run(ctx, camera.Options{
		Device:    cfg.Camera.Device,
		Scale:     cfg.Camera.Scale,
		Headless:  mustGetBool(cmd, "headless"),
		MaxFrames: mustGetInt(cmd, "max-frames"),
	}, rec, sess)
	if err != nil {
		return err
	}
	sess.Log().Infof("session ended after %d frames, %d faces", stats.Frames, stats.Faces)

	marked := sess.Marked()
	if len(marked) > 0 {
		fmt.Printf("Marked present: %s\n", strings.Join(marked, ", "))
	} else {
		fmt.Println("Nobody was marked present.")
	}
	if mustGetBool(cmd, "metrics") {
		fmt.Println(sess.Metrics())
	}
	return nil
}

func printPrepareResult(wb *attendance.Workbook, res attendance.PrepareResult) {
	switch {
	case res.Created:
		fmt.Printf("Created %s with %d people\n", wb.Path(), res.PeopleAdded)
	case res.DateAdded || res.PeopleAdded > 0:
		fmt.Printf("Updated %s (new day column: %t, people added: %d)\n", wb.Path(), res.DateAdded, res.PeopleAdded)
	}
}
