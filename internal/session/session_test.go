package session

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/kozaktomas/attendance/internal/attendance"
	"github.com/kozaktomas/attendance/internal/facematch"
)

type fakeRecorder struct {
	calls []string
	errs  map[string][]error // errors returned on successive calls per name
}

func (r *fakeRecorder) MarkPresent(name string, _ time.Time) error {
	r.calls = append(r.calls, name)
	if queue := r.errs[name]; len(queue) > 0 {
		r.errs[name] = queue[1:]
		return queue[0]
	}
	return nil
}

var (
	aliceEnc = facematch.Encoding{0, 0}
	bobEnc   = facematch.Encoding{1, 1}
	strange  = facematch.Encoding{9, 9}
)

func newMatcher() facematch.Matcher {
	return facematch.NewLinearMatcher(facematch.StrategyNearest,
		[]facematch.Encoding{aliceEnc, bobEnc}, []string{"alice", "bob"}, 0.6)
}

func faceAt(e facematch.Encoding, left int) facematch.Face {
	return facematch.Face{
		Box:      facematch.Box{Top: 10, Right: left + 20, Bottom: 30, Left: left},
		Encoding: e,
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
}

func TestProcess_AnnotationsAndMarking(t *testing.T) {
	rec := &fakeRecorder{}
	s := New(newMatcher(), rec, Options{Scale: 0.25, Record: true, Clock: fixedClock})

	annotations := s.Process([]facematch.Face{faceAt(aliceEnc, 0), faceAt(strange, 40)})

	if len(annotations) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(annotations))
	}
	if annotations[0].Label != "alice" || !annotations[0].Known {
		t.Errorf("expected alice, got %+v", annotations[0])
	}
	if annotations[1].Label != facematch.UnknownLabel || annotations[1].Known {
		t.Errorf("expected Unknown, got %+v", annotations[1])
	}
	wantBox := facematch.Box{Top: 40, Right: 80, Bottom: 120, Left: 0}
	if annotations[0].Box != wantBox {
		t.Errorf("expected box scaled to %+v, got %+v", wantBox, annotations[0].Box)
	}
	if !reflect.DeepEqual(rec.calls, []string{"alice"}) {
		t.Errorf("expected one recording for alice, got %v", rec.calls)
	}
}

func TestProcess_RecordsOncePerSession(t *testing.T) {
	rec := &fakeRecorder{}
	s := New(newMatcher(), rec, Options{Scale: 1, Record: true, Clock: fixedClock})

	for i := 0; i < 3; i++ {
		s.Process([]facematch.Face{faceAt(aliceEnc, 0)})
	}
	s.Process([]facematch.Face{faceAt(bobEnc, 0), faceAt(aliceEnc, 40)})

	if !reflect.DeepEqual(rec.calls, []string{"alice", "bob"}) {
		t.Errorf("expected alice and bob recorded once, got %v", rec.calls)
	}
	if !reflect.DeepEqual(s.Marked(), []string{"alice", "bob"}) {
		t.Errorf("Marked() = %v", s.Marked())
	}

	want := Metrics{Total: 5, TruePositives: 2, FalsePositives: 3}
	if got := s.Metrics(); got != want {
		t.Errorf("metrics = %+v, want %+v", got, want)
	}
}

func TestProcess_FailedRecordingIsRetried(t *testing.T) {
	rec := &fakeRecorder{errs: map[string][]error{
		"alice": {errors.New("disk full")},
	}}
	s := New(newMatcher(), rec, Options{Scale: 1, Record: true, Clock: fixedClock})

	s.Process([]facematch.Face{faceAt(aliceEnc, 0)})
	if len(s.Marked()) != 0 {
		t.Fatalf("expected alice not marked after a failed write, got %v", s.Marked())
	}

	s.Process([]facematch.Face{faceAt(aliceEnc, 0)})

	if !reflect.DeepEqual(rec.calls, []string{"alice", "alice"}) {
		t.Errorf("expected a retry, got %v", rec.calls)
	}
	if !reflect.DeepEqual(s.Marked(), []string{"alice"}) {
		t.Errorf("Marked() = %v", s.Marked())
	}
	want := Metrics{Total: 2, TruePositives: 1}
	if got := s.Metrics(); got != want {
		t.Errorf("metrics = %+v, want %+v", got, want)
	}
}

func TestProcess_PersonMissingFromSheet(t *testing.T) {
	rec := &fakeRecorder{errs: map[string][]error{
		"bob": {fmt.Errorf("%w: bob", attendance.ErrPersonNotFound)},
	}}
	s := New(newMatcher(), rec, Options{Scale: 1, Record: true, Clock: fixedClock})

	s.Process([]facematch.Face{faceAt(bobEnc, 0)})
	s.Process([]facematch.Face{faceAt(bobEnc, 0)})

	if len(rec.calls) != 1 {
		t.Errorf("expected no retry for a missing row, got %v", rec.calls)
	}
	if !reflect.DeepEqual(s.Marked(), []string{"bob"}) {
		t.Errorf("Marked() = %v", s.Marked())
	}
}

func TestProcess_NoRecord(t *testing.T) {
	rec := &fakeRecorder{}
	s := New(newMatcher(), rec, Options{Scale: 1, Record: false, Clock: fixedClock})

	s.Process([]facematch.Face{faceAt(aliceEnc, 0)})
	s.Process([]facematch.Face{faceAt(aliceEnc, 0), faceAt(strange, 40)})

	if len(rec.calls) != 0 {
		t.Errorf("expected no recordings, got %v", rec.calls)
	}
	want := Metrics{Total: 3, TruePositives: 1, FalsePositives: 1, FalseNegatives: 1}
	if got := s.Metrics(); got != want {
		t.Errorf("metrics = %+v, want %+v", got, want)
	}
}

func TestNew_AssignsSessionID(t *testing.T) {
	a := New(newMatcher(), &fakeRecorder{}, Options{})
	b := New(newMatcher(), &fakeRecorder{}, Options{})

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct session ids, got %q and %q", a.ID, b.ID)
	}
	if a.Log().Data["session"] != a.ID {
		t.Errorf("expected session field on logger, got %v", a.Log().Data)
	}
}

func TestMetrics(t *testing.T) {
	tests := []struct {
		name      string
		m         Metrics
		accuracy  float64
		precision float64
		recall    float64
	}{
		{name: "empty", m: Metrics{}},
		{name: "all true positives", m: Metrics{Total: 2, TruePositives: 2}, accuracy: 100, precision: 100, recall: 100},
		{name: "mixed", m: Metrics{Total: 4, TruePositives: 1, FalsePositives: 1, FalseNegatives: 2}, accuracy: 25, precision: 50, recall: 100.0 / 3},
		{name: "only unknown faces", m: Metrics{Total: 3, FalseNegatives: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Accuracy(); math.Abs(got-tt.accuracy) > 1e-9 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.accuracy)
			}
			if got := tt.m.Precision(); math.Abs(got-tt.precision) > 1e-9 {
				t.Errorf("Precision() = %v, want %v", got, tt.precision)
			}
			if got := tt.m.Recall(); math.Abs(got-tt.recall) > 1e-9 {
				t.Errorf("Recall() = %v, want %v", got, tt.recall)
			}
		})
	}
}

func TestMetricsString(t *testing.T) {
	m := Metrics{Total: 4, TruePositives: 1, FalsePositives: 1, FalseNegatives: 2}

	expected := "Performance Metrics:\nTotal Faces Processed: 4\nAccuracy: 25.00%\nPrecision: 50.00%\nRecall: 33.33%"
	if got := m.String(); got != expected {
		t.Errorf("String() = %q, want %q", got, expected)
	}
}
