// Package camera runs the live capture loop: grab, detect, annotate, show.
package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/attendance/internal/constants"
	"github.com/kozaktomas/attendance/internal/facematch"
	"github.com/kozaktomas/attendance/internal/logger"
	"github.com/kozaktomas/attendance/internal/session"
)

var log = logger.Log

var ErrCameraOpen = errors.New("could not open the camera")

var boxColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

const (
	boxThickness  = 2
	fontScale     = 0.75
	fontThickness = 2
)

// Detector finds faces in a JPEG-encoded frame.
type Detector interface {
	Detect(jpeg []byte) ([]facematch.Face, error)
}

// Processor turns the faces of a frame into annotations.
type Processor interface {
	Process(faces []facematch.Face) []session.Annotation
}

type Options struct {
	Device    int
	Scale     float64 // frames are shrunk by this factor before detection
	Headless  bool    // no preview window; stop with ctx or MaxFrames
	MaxFrames int     // 0 means unlimited
}

// Stats describes a finished capture loop.
type Stats struct {
	Frames int
	Faces  int
}

// Run captures frames until the user presses q, ctx is cancelled, MaxFrames
// is reached or a frame cannot be grabbed.
func Run(ctx context.Context, opts Options, det Detector, proc Processor) (Stats, error) {
	var stats Stats

	webcam, err := gocv.OpenVideoCapture(opts.Device)
	if err != nil {
		return stats, fmt.Errorf("%w: device %d: %v", ErrCameraOpen, opts.Device, err)
	}
	defer webcam.Close()
	if !webcam.IsOpened() {
		return stats, fmt.Errorf("%w: device %d", ErrCameraOpen, opts.Device)
	}

	var window *gocv.Window
	if !opts.Headless {
		window = gocv.NewWindow(constants.WindowName)
		defer window.Close()
		fmt.Printf("Press '%c' to quit.\n", constants.QuitKey)
	} else {
		fmt.Println("Running headless, press Ctrl+C to stop.")
	}

	frame := gocv.NewMat()
	defer frame.Close()
	small := gocv.NewMat()
	defer small.Close()

	for {
		select {
		case <-ctx.Done():
			return stats, nil
		default:
		}

		if ok := webcam.Read(&frame); !ok || frame.Empty() {
			fmt.Println("Failed to grab a frame.")
			return stats, nil
		}
		stats.Frames++

		faces, err := detectFrame(det, frame, &small, opts.Scale)
		if err != nil {
			log.Warnf("frame %d: %v", stats.Frames, err)
		}
		stats.Faces += len(faces)

		annotations := proc.Process(faces)

		if window != nil {
			draw(&frame, annotations)
			window.IMShow(frame)
			if window.WaitKey(1)&0xFF == int(constants.QuitKey) {
				return stats, nil
			}
		}

		if opts.MaxFrames > 0 && stats.Frames >= opts.MaxFrames {
			return stats, nil
		}
	}
}

// detectFrame shrinks the frame, encodes it as JPEG (the recognizer decodes
// it to RGB itself) and runs detection on it.
func detectFrame(det Detector, frame gocv.Mat, small *gocv.Mat, scale float64) ([]facematch.Face, error) {
	src := frame
	if scale > 0 && scale < 1 {
		gocv.Resize(frame, small, image.Point{}, scale, scale, gocv.InterpolationLinear)
		src = *small
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, src)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	return det.Detect(data)
}

func draw(img *gocv.Mat, annotations []session.Annotation) {
	for _, a := range annotations {
		gocv.Rectangle(img, a.Box.Rect(), boxColor, boxThickness)
		gocv.PutText(img, a.Label, a.Box.LabelOrigin(constants.LabelOffset),
			gocv.FontHersheySimplex, fontScale, boxColor, fontThickness)
	}
}
