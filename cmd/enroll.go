package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/attendance/internal/constants"
	"github.com/kozaktomas/attendance/internal/recognizer"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Compute face encodings for every reference photo",
	Long: `Scan the known faces directory (<dir>/<person name>/<photos>), encode the
first face found in every photo and store the result in the enrollment cache
so that "run" can start without re-encoding.`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Bool("force", false, "Ignore the enrollment cache and re-encode every photo")
	enrollCmd.Flags().Int("max-image-size", constants.DefaultMaxImageSize, "Downscale reference photos larger than this many pixels (0 = never)")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	overrideInt(cmd, "max-image-size", &cfg.Enrollment.MaxImageSize)

	rec, err := recognizer.New(cfg.Recognition.ModelsDir, cfg.Recognition.CNN)
	if err != nil {
		return err
	}
	defer rec.Close()

	fmt.Printf("Enrolling faces from %s\n", cfg.Enrollment.KnownFacesDir)
	g, stats, err := loadGallery(context.Background(), cfg, rec, galleryOptions{
		useCache:     !mustGetBool(cmd, "force"),
		showProgress: true,
	})
	if err != nil {
		return fmt.Errorf("enrollment failed: %w", err)
	}

	printEnrollSummary(g)
	if stats.Images > 0 {
		fmt.Printf("  Photos:   %d\n", stats.Images)
		fmt.Printf("  No face:  %d\n", stats.Skipped)
		fmt.Printf("  Failed:   %d\n", stats.Failed)
	}
	for _, p := range g.People() {
		fmt.Printf("  - %s\n", p)
	}
	return nil
}
