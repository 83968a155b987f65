package facematch

import (
	"fmt"
	"math"
	"sync"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/attendance/internal/constants"
)

// Matcher looks up an encoding among the enrolled faces.
type Matcher interface {
	Match(e Encoding) Match
	Len() int
}

// Index kinds accepted by NewMatcher.
const (
	IndexLinear = "linear"
	IndexHNSW   = "hnsw"
)

// NewMatcher builds a matcher over index-aligned encodings and names.
func NewMatcher(kind string, strategy Strategy, encodings []Encoding, names []string, tolerance float64) (Matcher, error) {
	if len(encodings) != len(names) {
		return nil, fmt.Errorf("gallery is misaligned: %d encodings, %d names", len(encodings), len(names))
	}

	switch kind {
	case IndexLinear, "":
		return NewLinearMatcher(strategy, encodings, names, tolerance), nil
	case IndexHNSW:
		if strategy != StrategyNearest {
			return nil, fmt.Errorf("the %s index only supports the %s strategy", IndexHNSW, StrategyNearest)
		}
		return NewIndexMatcher(encodings, names, tolerance), nil
	}
	return nil, fmt.Errorf("unknown index %q (use %s or %s)", kind, IndexLinear, IndexHNSW)
}

// LinearMatcher compares an encoding against every gallery entry.
type LinearMatcher struct {
	strategy  Strategy
	encodings []Encoding
	names     []string
	tolerance float64
}

func NewLinearMatcher(strategy Strategy, encodings []Encoding, names []string, tolerance float64) *LinearMatcher {
	return &LinearMatcher{
		strategy:  strategy,
		encodings: encodings,
		names:     names,
		tolerance: tolerance,
	}
}

func (m *LinearMatcher) Len() int {
	return len(m.encodings)
}

func (m *LinearMatcher) Match(e Encoding) Match {
	if len(m.encodings) == 0 {
		return unknown(math.Inf(1))
	}

	distances := Distances(m.encodings, e)
	best, bestDist := Nearest(distances)

	switch m.strategy {
	case StrategyFirst:
		if i := FirstWithin(distances, m.tolerance); i >= 0 {
			return Match{Index: i, Name: m.names[i], Distance: distances[i], Known: true}
		}
	default:
		if best >= 0 && bestDist < m.tolerance {
			return Match{Index: best, Name: m.names[best], Distance: bestDist, Known: true}
		}
	}
	return unknown(bestDist)
}

// IndexMatcher answers nearest-neighbour queries from an HNSW graph.
// Results are approximate, which is acceptable for galleries too large
// for a linear scan per face per frame.
type IndexMatcher struct {
	graph     *hnsw.Graph[int]
	names     []string
	dims      int
	count     int
	tolerance float64
	mu        sync.RWMutex
}

// NewIndexMatcher builds the graph. Encodings whose length differs from the
// first one are skipped.
func NewIndexMatcher(encodings []Encoding, names []string, tolerance float64) *IndexMatcher {
	m := &IndexMatcher{
		names:     names,
		tolerance: tolerance,
	}
	if len(encodings) == 0 {
		return m
	}

	g := hnsw.NewGraph[int]()
	g.M = constants.HNSWMaxNeighbors
	g.Ml = 1.0 / float64(constants.HNSWMaxNeighbors) // Standard HNSW formula
	g.EfSearch = constants.HNSWEfSearch
	g.Distance = hnsw.EuclideanDistance

	m.dims = len(encodings[0])
	for i, e := range encodings {
		if len(e) != m.dims || m.dims == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(i, []float32(e)))
		m.count++
	}

	m.graph = g
	return m
}

func (m *IndexMatcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

func (m *IndexMatcher) Match(e Encoding) Match {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.graph == nil || m.count == 0 || len(e) != m.dims {
		return unknown(math.Inf(1))
	}

	neighbors := m.graph.Search([]float32(e), 1)
	if len(neighbors) == 0 {
		return unknown(math.Inf(1))
	}

	n := neighbors[0]
	d := Distance(Encoding(n.Value), e)
	if d < m.tolerance {
		return Match{Index: n.Key, Name: m.names[n.Key], Distance: d, Known: true}
	}
	return unknown(d)
}

func unknown(distance float64) Match {
	return Match{Index: -1, Name: UnknownLabel, Distance: distance}
}
