package facematch

import (
	"image"
	"math"
)

// Box is a face bounding box in pixel coordinates, in the order the
// recognizer reports it: top, right, bottom, left.
type Box struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// BoxFromRect converts an image.Rectangle (Min is top-left) to a Box.
func BoxFromRect(r image.Rectangle) Box {
	r = r.Canon()
	return Box{
		Top:    r.Min.Y,
		Right:  r.Max.X,
		Bottom: r.Max.Y,
		Left:   r.Min.X,
	}
}

// Rect returns the box as an image.Rectangle for drawing.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Scale multiplies every coordinate by factor, rounding to the nearest pixel.
// Detection runs on a downscaled frame, so boxes are scaled by 1/frameScale
// before they are drawn on the full-size frame.
func (b Box) Scale(factor float64) Box {
	if factor <= 0 {
		return b
	}
	s := func(v int) int {
		return int(math.Round(float64(v) * factor))
	}
	return Box{
		Top:    s(b.Top),
		Right:  s(b.Right),
		Bottom: s(b.Bottom),
		Left:   s(b.Left),
	}
}

// LabelOrigin returns the baseline position of the label drawn below the box.
func (b Box) LabelOrigin(offset int) image.Point {
	return image.Pt(b.Left, b.Bottom+offset)
}
