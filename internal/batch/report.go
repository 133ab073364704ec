package batch

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

type Status string

const (
	StatusWritten     Status = "written"
	StatusExists      Status = "exists"
	StatusOutsideBBox Status = "outside_bbox"
	StatusFailed      Status = "failed"
)

// ReportRow is the outcome of one scene.
type ReportRow struct {
	Index   int    `csv:"index"`
	Input   string `csv:"input"`
	Output  string `csv:"output"`
	Status  Status `csv:"status"`
	Message string `csv:"message"`
}

type Summary struct {
	Rows []*ReportRow
}

func (s *Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Rows {
		if r.Status == status {
			n++
		}
	}
	return n
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d scenes: %d written, %d already present, %d outside bounding box, %d failed",
		len(s.Rows), s.Count(StatusWritten), s.Count(StatusExists), s.Count(StatusOutsideBBox), s.Count(StatusFailed))
}

// WriteReport saves the per-scene rows as CSV.
func (s *Summary) WriteReport(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&s.Rows, file); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
