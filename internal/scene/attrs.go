package scene

import (
	"fmt"
	"math"
	"os/user"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"

	"github.com/surftemp/landsat-importer/internal/geo"
	"github.com/surftemp/landsat-importer/internal/gridded"
	"github.com/surftemp/landsat-importer/internal/metadata"
	"github.com/surftemp/landsat-importer/internal/raster"
)

const dateLayout = "2006-01-02T15:04:05-0700"

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// globalAttrs builds the CF/ACDD global attributes of a scene.
func (a *Assembler) globalAttrs(m *metadata.SceneMetadata, opts Options, ref *raster.Grid, bound *geoBound) gridded.Attrs {
	var attrs gridded.Attrs
	attrs.Set("title", m.Title())
	attrs.Set("summary", m.Summary())
	attrs.Set("Conventions", "CF-1.11, ACDD-1.3")
	attrs.Set("history", opts.History)
	attrs.Set("level1_software_version", m.SoftwareL1)
	if m.SoftwareL2 != "" {
		attrs.Set("level2_software_version", m.SoftwareL2)
	}
	attrs.Set("landsat_importer_version", opts.Version)
	attrs.Set("date_created", formatDate(a.Now().UTC()))

	attrs.Set("acquisition_time", formatDate(m.Acquired))
	attrs.Set("time_coverage_start", formatDate(m.Acquired.Add(-12*time.Second)))
	attrs.Set("time_coverage_end", formatDate(m.Acquired.Add(12*time.Second)))

	attrs.Set("source_file", filepath.Base(m.Path))
	attrs.Set("source", m.ID())
	attrs.Set("platform", m.SpacecraftID)
	attrs.Set("sensor", m.SensorID)
	attrs.Set("instrument", m.SensorID)
	if m.DOI != "" {
		attrs.Set("metadata_link", m.DOI)
		attrs.Set("references", m.DOI)
	}

	if b, ok := sceneBound(m, opts.BBox, bound); ok {
		attrs.Set("geospatial_lat_min", b.Min.Lat())
		attrs.Set("geospatial_lon_min", b.Min.Lon())
		attrs.Set("geospatial_lat_max", b.Max.Lat())
		attrs.Set("geospatial_lon_max", b.Max.Lon())
		attrs.Set("geospatial_lat_units", "degrees_north")
		attrs.Set("geospatial_lon_units", "degrees_east")
		if opts.BBox == nil && m.Footprint != nil {
			attrs.Set("geospatial_bounds", m.Footprint.WKT())
		} else {
			attrs.Set("geospatial_bounds", geo.BoundWKT(b))
		}
	}
	attrs.Set("geospatial_lat_resolution", fmt.Sprintf("%v m", math.Abs(ref.Transform[5])))
	attrs.Set("geospatial_lon_resolution", fmt.Sprintf("%v m", math.Abs(ref.Transform[1])))

	attrs.Set("processing_level", m.ProcessingLevel)
	attrs.Set("collection", int32(m.Collection))
	attrs.Set("export_mode", opts.Mode.String())
	attrs.Set("cdm_data_type", "grid")
	attrs.Set("acknowledgement", "Image courtesy of the U.S. Geological Survey")
	attrs.Set("creator_name", creator(opts.Creator))
	return attrs
}

// sceneBound is the lon/lat extent of the exported grid: derived from lat/lon
// when available, otherwise the footprint clipped to the bounding box.
func sceneBound(m *metadata.SceneMetadata, bbox *geo.BoundingBox, derived *geoBound) (orb.Bound, bool) {
	if derived != nil {
		return orb.Bound{
			Min: orb.Point{derived.minLon, derived.minLat},
			Max: orb.Point{derived.maxLon, derived.maxLat},
		}, true
	}
	footprint, ok := m.Bound()
	switch {
	case ok && bbox != nil:
		clipped, overlap := bbox.Intersection(footprint)
		return clipped.Bound, overlap
	case ok:
		return footprint, true
	case bbox != nil:
		return bbox.Bound, true
	}
	return orb.Bound{}, false
}

func creator(name string) string {
	if name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
