package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/surftemp/landsat-importer/internal/geo"
	"github.com/surftemp/landsat-importer/internal/metadata"
	"github.com/surftemp/landsat-importer/internal/raster"
)

// Loader reads the raw DN grid of a band, cropped to an optional bounding box.
type Loader struct {
	Source raster.Source
	Log    logrus.FieldLogger
}

// Resolve finds the raster of a band: the file named in the metadata first,
// then <stem>_<suffix>, then any file ending in _<suffix> in the scene folder.
func (l *Loader) Resolve(m *metadata.SceneMetadata, cal metadata.BandCalibration) (string, error) {
	dir := m.Dir()
	var tried []string
	if cal.File != "" {
		p := filepath.Join(dir, cal.File)
		if exists(p) {
			return p, nil
		}
		tried = append(tried, p)
	}
	if cal.Suffix != "" {
		p := filepath.Join(dir, m.Stem()+"_"+cal.Suffix)
		if exists(p) {
			return p, nil
		}
		tried = append(tried, p)

		entries, err := os.ReadDir(dir)
		if err == nil {
			var matches []string
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(strings.ToUpper(e.Name()), "_"+strings.ToUpper(cal.Suffix)) {
					matches = append(matches, e.Name())
				}
			}
			sort.Strings(matches)
			if len(matches) > 0 {
				return filepath.Join(dir, matches[0]), nil
			}
		}
	}
	notFound := &BandFileNotFoundError{Scene: m.Path, Band: cal.Name, Path: strings.Join(tried, ", ")}
	if cal.Kind == metadata.KindAngle {
		return "", fmt.Errorf("%w: %w", ErrAngleBandAbsent, notFound)
	}
	return "", notFound
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads a band. With a bounding box only the covering pixel window is
// read; a box outside the raster gives *raster.EmptyIntersectionError.
// Samples equal to the raster nodata value, or else the catalogue fill
// value, are invalid.
func (l *Loader) Load(m *metadata.SceneMetadata, cal metadata.BandCalibration, bbox *geo.BoundingBox) (*raster.Grid, error) {
	path, err := l.Resolve(m, cal)
	if err != nil {
		return nil, err
	}
	log := l.Log.WithFields(logrus.Fields{"scene": m.Path, "band": cal.Name, "stage": "load"})

	ds, err := l.Source.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene %s band %s: %w", m.Path, cal.Name, err)
	}
	defer ds.Close()

	window := raster.FullWindow(ds)
	if bbox != nil {
		if window, err = l.window(ds, *bbox); err != nil {
			var empty *raster.EmptyIntersectionError
			if errors.As(err, &empty) {
				empty.Path = m.Path
				return nil, empty
			}
			return nil, fmt.Errorf("scene %s band %s: %w", m.Path, cal.Name, err)
		}
	}
	log.Debugf("reading %s %s", filepath.Base(path), window)

	g, err := raster.Read(ds, window)
	if err != nil {
		return nil, fmt.Errorf("scene %s band %s: %w", m.Path, cal.Name, err)
	}
	if _, ok := ds.NoData(); !ok && cal.HasFill {
		g.Mask(cal.Fill)
	}
	return g, nil
}

func (l *Loader) window(ds raster.Dataset, bbox geo.BoundingBox) (raster.Window, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return raster.Window{}, err
	}
	crs, err := ds.CRS()
	if err != nil {
		return raster.Window{}, err
	}
	proj, err := l.Source.Projector(crs)
	if err != nil {
		return raster.Window{}, err
	}
	defer proj.Close()
	return raster.WindowFor(ds.Width(), ds.Height(), gt, proj, bbox)
}
