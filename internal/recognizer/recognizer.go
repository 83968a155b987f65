// Package recognizer wraps the dlib face recognition models (go-face).
package recognizer

import (
	"fmt"
	"sync"

	face "github.com/Kagami/go-face"

	"github.com/kozaktomas/attendance/internal/facematch"
)

// Recognizer detects faces in JPEG images and computes their 128-dim encodings.
// The underlying dlib models are not safe for concurrent use.
type Recognizer struct {
	rec *face.Recognizer
	cnn bool
	mu  sync.Mutex
}

// New loads the models from modelsDir (shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat and, for cnn, mmod_human_face_detector.dat).
func New(modelsDir string, cnn bool) (*Recognizer, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load face models from %s: %w", modelsDir, err)
	}
	return &Recognizer{rec: rec, cnn: cnn}, nil
}

// Detect returns every face in the image in detection order.
func (r *Recognizer) Detect(jpeg []byte) ([]facematch.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		found []face.Face
		err   error
	)
	if r.cnn {
		found, err = r.rec.RecognizeCNN(jpeg)
	} else {
		found, err = r.rec.Recognize(jpeg)
	}
	if err != nil {
		return nil, fmt.Errorf("face recognition failed: %w", err)
	}

	faces := make([]facematch.Face, len(found))
	for i, f := range found {
		faces[i] = facematch.Face{
			Box:      facematch.BoxFromRect(f.Rectangle),
			Encoding: descriptorToEncoding(f.Descriptor),
		}
	}
	return faces, nil
}

func (r *Recognizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec.Close()
}

func descriptorToEncoding(d face.Descriptor) facematch.Encoding {
	e := make(facematch.Encoding, len(d))
	copy(e, d[:])
	return e
}
