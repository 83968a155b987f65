// Package session ties face matching to attendance recording for one run of
// the capture loop.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/attendance/internal/attendance"
	"github.com/kozaktomas/attendance/internal/facematch"
	"github.com/kozaktomas/attendance/internal/logger"
)

// Recorder persists a check-in. *attendance.Workbook implements it.
type Recorder interface {
	MarkPresent(name string, at time.Time) error
}

type Options struct {
	// Scale is the factor frames were shrunk by before detection; boxes are
	// multiplied by its inverse.
	Scale float64
	// Record disables writing to the recorder when false. Faces are still
	// matched, labeled and counted.
	Record bool
	// Clock returns the check-in time. Defaults to time.Now.
	Clock func() time.Time
}

// Annotation is what gets drawn for one face.
type Annotation struct {
	Box      facematch.Box
	Label    string
	Known    bool
	Distance float64
}

// Session holds per-run state: who has been marked and the running metrics.
type Session struct {
	ID string

	matcher  facematch.Matcher
	recorder Recorder
	opts     Options
	log      *logrus.Entry

	mu      sync.Mutex
	marked  map[string]time.Time
	metrics Metrics
}

func New(matcher facematch.Matcher, recorder Recorder, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	id := uuid.NewString()
	return &Session{
		ID:       id,
		matcher:  matcher,
		recorder: recorder,
		opts:     opts,
		log:      logger.Log.WithField("session", id),
		marked:   make(map[string]time.Time),
	}
}

// Log returns the session's logger.
func (s *Session) Log() *logrus.Entry {
	return s.log
}

// Process matches the faces of one frame in detection order, records new
// check-ins and returns the annotations to draw. A failed recording is
// logged and retried on a later frame.
func (s *Session) Process(faces []facematch.Face) []Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	annotations := make([]Annotation, 0, len(faces))
	for _, f := range faces {
		m := s.matcher.Match(f.Encoding)
		annotations = append(annotations, Annotation{
			Box:      f.Box.Scale(1 / s.opts.Scale),
			Label:    m.Label(),
			Known:    m.Known,
			Distance: m.Distance,
		})

		s.metrics.Total++
		if !m.Known {
			s.metrics.FalseNegatives++
			continue
		}
		if _, ok := s.marked[m.Name]; ok {
			s.metrics.FalsePositives++
			continue
		}

		now := s.opts.Clock()
		if s.opts.Record {
			if err := s.record(m.Name, now); err != nil {
				s.log.WithField("person", m.Name).Errorf("failed to record attendance: %v", err)
				continue
			}
		}
		s.marked[m.Name] = now
		s.metrics.TruePositives++
		s.log.WithField("distance", m.Distance).Infof("%s marked present at %s", m.Name, now.Format(attendance.TimeLayout))
	}
	return annotations
}

// record writes the check-in. A name missing from the sheet is not retried,
// since every later frame would fail the same way.
func (s *Session) record(name string, at time.Time) error {
	err := s.recorder.MarkPresent(name, at)
	if errors.Is(err, attendance.ErrPersonNotFound) {
		s.log.WithField("person", name).Warn("recognized person has no row in the attendance sheet")
		return nil
	}
	return err
}

// Marked returns the names marked present during this session, sorted.
func (s *Session) Marked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.marked))
	for n := range s.marked {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Metrics returns a snapshot of the running counters.
func (s *Session) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}
