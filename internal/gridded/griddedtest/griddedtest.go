// Package griddedtest provides a recording gridded.Writer for tests.
package griddedtest

import (
	"os"
	"sync"

	"github.com/surftemp/landsat-importer/internal/gridded"
)

// Recorder keeps every written dataset and touches the output path so
// existence checks behave as with a real writer.
type Recorder struct {
	mu      sync.Mutex
	Written map[string]*gridded.Dataset
	Order   []string
	Err     error
}

func NewRecorder() *Recorder {
	return &Recorder{Written: map[string]*gridded.Dataset{}}
}

func (r *Recorder) Write(ds *gridded.Dataset, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if err := ds.Validate(); err != nil {
		return err
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return err
	}
	r.Written[path] = ds
	r.Order = append(r.Order, path)
	return nil
}
