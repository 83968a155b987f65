// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Face matching constants
const (
	// DefaultTolerance is the maximum euclidean distance between two encodings
	// for them to be considered the same person. Lower values = stricter matching
	DefaultTolerance = 0.6

	// DefaultStrategy is the matching strategy used by the run command
	DefaultStrategy = "nearest"

	// DefaultIndex is the matcher backend used by the run command
	DefaultIndex = "linear"

	// HNSWMaxNeighbors is the M parameter of the encoding HNSW graph
	HNSWMaxNeighbors = 16

	// HNSWEfSearch is the search candidate pool size.
	// Higher values improve recall but slow down search.
	HNSWEfSearch = 100
)

// Capture constants
const (
	// DefaultFrameScale is the factor frames are shrunk by before detection.
	// Face boxes are scaled back up by its inverse before drawing
	DefaultFrameScale = 0.25

	// DefaultCameraDevice is the video capture device opened by default
	DefaultCameraDevice = 0

	// WindowName is the title of the preview window
	WindowName = "Camera"

	// LabelOffset is the distance in pixels between a face box bottom and its label baseline
	LabelOffset = 20

	// QuitKey stops the capture loop when pressed in the preview window
	QuitKey = 'q'
)

// Enrollment constants
const (
	// DefaultMaxImageSize is the maximum dimension (width or height) of a reference photo
	// before it is downscaled for encoding
	DefaultMaxImageSize = 1600

	// JPEGQuality is used when reference photos are re-encoded for the recognizer
	JPEGQuality = 95
)
