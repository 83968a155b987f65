package enroll

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Sample is one reference photo of an enrolled person.
type Sample struct {
	Person  string // name of the person directory
	Path    string
	Rel     string // path relative to the known faces directory
	Size    int64
	ModTime time.Time
}

// Scan lists reference photos laid out as <dir>/<person>/<image files>.
// Files at the top level, nested directories and hidden entries are ignored.
// Samples are sorted by person, then file name.
func Scan(dir string) ([]Sample, error) {
	people, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read known faces directory: %w", err)
	}

	var samples []Sample
	for _, p := range people {
		if !p.IsDir() || hidden(p.Name()) {
			continue
		}

		personDir := filepath.Join(dir, p.Name())
		files, err := os.ReadDir(personDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory of %s: %w", p.Name(), err)
		}

		for _, f := range files {
			if f.IsDir() || hidden(f.Name()) {
				continue
			}
			info, err := f.Info()
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", f.Name(), err)
			}
			samples = append(samples, Sample{
				Person:  p.Name(),
				Path:    filepath.Join(personDir, f.Name()),
				Rel:     filepath.ToSlash(filepath.Join(p.Name(), f.Name())),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].Person != samples[j].Person {
			return samples[i].Person < samples[j].Person
		}
		return samples[i].Rel < samples[j].Rel
	})

	return samples, nil
}

// People returns the distinct person names of the samples, sorted.
func People(samples []Sample) []string {
	var people []string
	for i, s := range samples {
		if i == 0 || s.Person != samples[i-1].Person {
			people = append(people, s.Person)
		}
	}
	return people
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
