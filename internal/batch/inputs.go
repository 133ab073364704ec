package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/surftemp/landsat-importer/internal/metadata"
)

// ErrNoScenes is returned when an input path resolves to no scene at all.
var ErrNoScenes = errors.New("no scenes found")

type sceneListRow struct {
	Path string
}

// firstColumn hands gocsv only the first field of each record, so lists may
// carry any number of extra columns.
type firstColumn struct {
	r *csv.Reader
}

func (f firstColumn) Read() ([]string, error) {
	record, err := f.r.Read()
	if err != nil {
		return nil, err
	}
	return record[:1], nil
}

func (f firstColumn) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := f.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// Inputs expands an input path into the scenes to process, in processing
// order. The path may be a metadata file, a scene folder, a folder of MTL
// files and scene sub-folders, or a .csv list with a path column.
func Inputs(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readSceneList(path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}
	// one input per scene: a scene's MTL.xml replaces its MTL.txt
	var inputs []string
	index := map[string]int{}
	for _, e := range entries {
		full := filepath.Join(path, e.Name())
		if e.IsDir() {
			if _, err := metadata.Locate(full); err == nil {
				inputs = append(inputs, full)
			}
			continue
		}
		if !metadata.IsMetadataFile(e.Name()) {
			continue
		}
		stem := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if i, ok := index[stem]; ok {
			if strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
				inputs[i] = full
			}
			continue
		}
		index[stem] = len(inputs)
		inputs = append(inputs, full)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoScenes, path)
	}
	return inputs, nil
}

// IsSingleScene reports whether path names one scene's metadata file, as
// opposed to a scene folder, a folder of scenes or a scene list.
func IsSingleScene(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// readSceneList reads a CSV whose first column holds scene paths. A leading
// "path" header row is skipped. Relative paths are taken relative to the
// list's folder.
func readSceneList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene list %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	var rows []*sceneListRow
	if err := gocsv.UnmarshalCSVWithoutHeaders(firstColumn{r}, &rows); err != nil {
		return nil, fmt.Errorf("scene list %s: %w", path, err)
	}
	if len(rows) > 0 && strings.EqualFold(strings.TrimSpace(rows[0].Path), "path") {
		rows = rows[1:]
	}

	var inputs []string
	for i, row := range rows {
		p := strings.TrimSpace(row.Path)
		if p == "" {
			return nil, fmt.Errorf("scene list %s: row %d has no path", path, i+1)
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		inputs = append(inputs, p)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoScenes, path)
	}
	return inputs, nil
}
