// Package facematch provides face encodings, distances and matching strategies
// shared between enrollment, the capture loop and the workbook lookups.
package facematch

import "fmt"

// UnknownLabel is shown for faces that matched no enrolled person.
const UnknownLabel = "Unknown"

// Encoding is a facial feature vector produced by the recognizer (128 dims).
type Encoding []float32

// Face is a single detection: where it is in the frame and what it looks like.
type Face struct {
	Box      Box
	Encoding Encoding
}

// Match is the result of looking up one encoding in the gallery.
type Match struct {
	Index    int     // gallery index of the matched entry, -1 when unknown
	Name     string  // enrolled name, or UnknownLabel
	Distance float64 // distance to the matched (or nearest) entry
	Known    bool
}

// Label returns the text drawn under a face box.
func (m Match) Label() string {
	if !m.Known {
		return UnknownLabel
	}
	return m.Name
}

// Strategy selects how a gallery entry is chosen for an encoding.
type Strategy string

const (
	// StrategyNearest picks the closest entry and accepts it when distance < tolerance
	StrategyNearest Strategy = "nearest"
	// StrategyFirst picks the first entry in gallery order with distance <= tolerance
	StrategyFirst Strategy = "first"
)

// ParseStrategy validates a strategy name from flags or config.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyNearest, StrategyFirst:
		return Strategy(s), nil
	case "":
		return StrategyNearest, nil
	}
	return "", fmt.Errorf("unknown matching strategy %q (use nearest or first)", s)
}
