// Package batch runs the scene pipeline over a list of inputs, one scene at
// a time, and records what happened to each.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/surftemp/landsat-importer/internal/gridded"
	"github.com/surftemp/landsat-importer/internal/metadata"
	"github.com/surftemp/landsat-importer/internal/quicklook"
	"github.com/surftemp/landsat-importer/internal/raster"
	"github.com/surftemp/landsat-importer/internal/scene"
)

type Options struct {
	Output    string
	Offset    int
	Limit     int // 0 means no limit
	Batch     int // 0 writes every scene to Output
	Scene     scene.Options
	Report    string
	Quicklook string // band rendered as PNG next to each output
	Progress  bool

	// SingleScene makes a scene failure the result of Run. It is set when
	// the input names one metadata file rather than a folder or list.
	SingleScene bool
}

// Notifier receives a run summary.
type Notifier interface {
	SendErrorNotification(message string) error
	SendSuccessNotification(message string) error
}

type Driver struct {
	Assembler *scene.Assembler
	Writer    gridded.Writer
	Log       logrus.FieldLogger
	Notifier  Notifier
}

func NewDriver(src raster.Source, writer gridded.Writer, log logrus.FieldLogger) *Driver {
	return &Driver{
		Assembler: scene.NewAssembler(src, log),
		Writer:    writer,
		Log:       log,
	}
}

// Run processes inputs in order. A failing scene is logged and the run
// continues; in single-scene mode its error is returned.
func (d *Driver) Run(inputs []string, opts Options) (*Summary, error) {
	if len(inputs) == 0 {
		return nil, ErrNoScenes
	}
	d.Log.Infof("Found %d scenes to process", len(inputs))

	selected := inputs[min(max(opts.Offset, 0), len(inputs)):]
	if opts.Limit > 0 && len(selected) > opts.Limit {
		selected = selected[:opts.Limit]
	}
	toDir := len(inputs) > 1 || !strings.HasSuffix(opts.Output, ".nc")

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.Default(int64(len(selected)), "Processing scenes")
	}

	summary := &Summary{}
	var firstErr error
	for i, input := range selected {
		idx := max(opts.Offset, 0) + i
		output := opts.Output
		if opts.Batch > 0 {
			output = filepath.Join(output, strconv.Itoa(idx/opts.Batch))
		}
		d.Log.Infof("Processing %d: %s -> %s", idx, input, output)

		row := &ReportRow{Index: idx, Input: input, Output: output}
		if err := d.process(input, output, toDir, opts, row); err != nil {
			row.Status = StatusFailed
			row.Message = err.Error()
			d.Log.WithField("scene", input).Errorf("Processing failed for %s: %v", input, err)
			if firstErr == nil {
				firstErr = err
			}
		}
		summary.Rows = append(summary.Rows, row)
		if bar != nil {
			bar.Add(1)
		}
	}

	if opts.Report != "" {
		if err := summary.WriteReport(opts.Report); err != nil {
			d.Log.Errorf("Failed to write report %s: %v", opts.Report, err)
		}
	}
	d.notify(summary)

	if opts.SingleScene && firstErr != nil {
		return summary, firstErr
	}
	return summary, nil
}

func (d *Driver) process(input, output string, toDir bool, opts Options, row *ReportRow) error {
	path, err := metadata.Locate(input)
	if err != nil {
		return err
	}
	m, err := metadata.Parse(path)
	if err != nil {
		return err
	}

	target := output
	if toDir {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return fmt.Errorf("failed to create output folder: %w", err)
		}
		target = filepath.Join(output, opts.Scene.Pattern.Render(m))
	} else if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}
	row.Output = target
	if _, err := os.Stat(target); err == nil {
		d.Log.Infof("Output path %s already exists, skipping", target)
		row.Status = StatusExists
		return nil
	}

	res, err := d.Assembler.Assemble(m, opts.Scene)
	var empty *raster.EmptyIntersectionError
	if errors.As(err, &empty) {
		d.Log.Infof("Skipping %s: %v", input, err)
		row.Status = StatusOutsideBBox
		row.Message = err.Error()
		return nil
	}
	if err != nil {
		return err
	}

	if err := d.Writer.Write(res.Dataset, target); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if opts.Quicklook != "" {
		d.quicklook(res, opts.Quicklook, target)
	}
	if len(res.Skipped) > 0 {
		row.Message = "skipped bands: " + strings.Join(res.Skipped, ",")
	}
	row.Status = StatusWritten
	d.Log.Infof("Export complete to %s", target)
	return nil
}

func (d *Driver) quicklook(res *scene.Result, band, target string) {
	grid, ok := res.Grids[band]
	if !ok {
		d.Log.Warnf("Quicklook band %s was not exported", band)
		return
	}
	png := strings.TrimSuffix(target, filepath.Ext(target)) + ".png"
	if err := quicklook.Write(grid, png); err != nil {
		d.Log.Warnf("Quicklook %s: %v", png, err)
	}
}

func (d *Driver) notify(summary *Summary) {
	if d.Notifier == nil {
		return
	}
	var err error
	if summary.Count(StatusFailed) > 0 {
		err = d.Notifier.SendErrorNotification(summary.String())
	} else {
		err = d.Notifier.SendSuccessNotification(summary.String())
	}
	if err != nil {
		d.Log.Warnf("Failed to send notification: %v", err)
	}
}
