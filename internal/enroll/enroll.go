// Package enroll builds the gallery of known faces from a directory of
// labeled reference photos.
package enroll

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/kozaktomas/attendance/internal/facematch"
	"github.com/kozaktomas/attendance/internal/logger"
)

var log = logger.Log

// ErrNoFaces is returned by Enroll when no reference photo yielded a face.
var ErrNoFaces = errors.New("no faces found in known faces directory")

// Detector finds faces in a JPEG image and returns them in detection order.
type Detector interface {
	Detect(jpeg []byte) ([]facematch.Face, error)
}

// Gallery holds index-aligned encodings and names. A person appears once per
// reference photo that yielded a face.
type Gallery struct {
	Encodings []facematch.Encoding
	Names     []string
}

func (g *Gallery) Add(name string, e facematch.Encoding) {
	g.Encodings = append(g.Encodings, e)
	g.Names = append(g.Names, name)
}

func (g *Gallery) Len() int {
	return len(g.Encodings)
}

// People returns the distinct enrolled names, sorted alphabetically.
func (g *Gallery) People() []string {
	seen := make(map[string]struct{}, len(g.Names))
	var people []string
	for _, n := range g.Names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		people = append(people, n)
	}
	sort.Strings(people)
	return people
}

// Stats summarizes an enrollment run.
type Stats struct {
	People  int // distinct people with at least one encoding
	Images  int // reference photos examined
	Faces   int // encodings added to the gallery
	Skipped int // photos without a detectable face
	Failed  int // photos that could not be read, decoded or encoded
}

type Options struct {
	MaxImageSize int
	// OnSample is called after each photo is processed, e.g. to advance a progress bar.
	OnSample func(s Sample, faces int)
}

// Enroll encodes every sample with det. For each photo with at least one face
// the first encoding is added under the person's name. Photos that fail are
// logged and skipped; only context cancellation aborts the run.
func Enroll(ctx context.Context, samples []Sample, det Detector, opts Options) (*Gallery, Stats, error) {
	gallery := &Gallery{}
	var stats Stats

	current := ""
	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		if s.Person != current {
			current = s.Person
			log.Infof("Processing %s's images...", s.Person)
		}

		stats.Images++
		faces, err := encodeSample(s, det, opts.MaxImageSize)
		if err != nil {
			stats.Failed++
			log.WithField("file", s.Rel).Warnf("skipping reference photo: %v", err)
		} else if len(faces) == 0 {
			stats.Skipped++
			log.WithField("file", s.Rel).Debug("no face found")
		} else {
			gallery.Add(s.Person, faces[0].Encoding)
			stats.Faces++
		}

		if opts.OnSample != nil {
			opts.OnSample(s, len(faces))
		}
	}

	stats.People = len(gallery.People())
	if gallery.Len() == 0 {
		return gallery, stats, ErrNoFaces
	}
	return gallery, stats, nil
}

func encodeSample(s Sample, det Detector, maxSize int) ([]facematch.Face, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	img, err := PrepareImage(data, maxSize)
	if err != nil {
		return nil, err
	}

	faces, err := det.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("failed to detect faces: %w", err)
	}
	return faces, nil
}

// EnrollDir scans dir and enrolls every reference photo found in it.
func EnrollDir(ctx context.Context, dir string, det Detector, opts Options) (*Gallery, Stats, error) {
	samples, err := Scan(dir)
	if err != nil {
		return nil, Stats{}, err
	}
	return Enroll(ctx, samples, det, opts)
}
