package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/kozaktomas/attendance/internal/config"
	"github.com/kozaktomas/attendance/internal/enroll"
)

type galleryOptions struct {
	useCache     bool
	showProgress bool
}

// loadGallery returns the enrolled faces, from the cache when it still matches
// the known faces directory and by running enrollment otherwise. A fresh
// enrollment rewrites the cache.
func loadGallery(ctx context.Context, cfg *config.Config, det enroll.Detector, opts galleryOptions) (*enroll.Gallery, enroll.Stats, error) {
	samples, err := enroll.Scan(cfg.Enrollment.KnownFacesDir)
	if err != nil {
		return nil, enroll.Stats{}, err
	}

	cachePath := cfg.Enrollment.CachePath
	fingerprint := enroll.Fingerprint(samples, cacheSalt(cfg))

	if opts.useCache && cachePath != "" {
		g, err := enroll.LoadCache(cachePath, fingerprint)
		switch {
		case err == nil:
			fmt.Printf("Using enrollment cache %s\n", cachePath)
			return g, enroll.Stats{People: len(g.People()), Faces: g.Len()}, nil
		case errors.Is(err, enroll.ErrCacheStale):
			log.Info("known faces changed since the last enrollment, re-enrolling")
		case errors.Is(err, os.ErrNotExist):
		default:
			log.Warnf("ignoring enrollment cache: %v", err)
		}
	}

	var bar *progressbar.ProgressBar
	if opts.showProgress {
		bar = progressbar.NewOptions(len(samples),
			progressbar.OptionSetDescription("Enrolling"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	g, stats, err := enroll.Enroll(ctx, samples, det, enroll.Options{
		MaxImageSize: cfg.Enrollment.MaxImageSize,
		OnSample: func(enroll.Sample, int) {
			if bar != nil {
				bar.Add(1)
			}
		},
	})
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return g, stats, err
	}

	if cachePath != "" {
		if err := enroll.SaveCache(cachePath, fingerprint, g); err != nil {
			log.Warnf("failed to write enrollment cache: %v", err)
		}
	}
	return g, stats, nil
}

// cacheSalt covers the settings that change the encodings of the same photos.
func cacheSalt(cfg *config.Config) string {
	return fmt.Sprintf("max=%d cnn=%t", cfg.Enrollment.MaxImageSize, cfg.Recognition.CNN)
}

func printEnrollSummary(g *enroll.Gallery) {
	fmt.Printf("Loaded %d faces from %d people.\n", g.Len(), len(g.People()))
}
