// Command inspect_metadata parses a scene's metadata and dumps what the
// importer sees as JSON: the scene fields, each band's calibration and the
// raster found for it.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/surftemp/landsat-importer/internal/metadata"
	"github.com/surftemp/landsat-importer/internal/properties"
	"github.com/surftemp/landsat-importer/internal/raster/gdalraster"
	"github.com/surftemp/landsat-importer/internal/scene"
)

type bandInfo struct {
	Name        string                 `json:"name"`
	Variable    string                 `json:"variable"`
	Kind        string                 `json:"kind"`
	Units       string                 `json:"units,omitempty"`
	Radiance    *metadata.Coefficients `json:"radiance,omitempty"`
	Reflectance *metadata.Coefficients `json:"reflectance,omitempty"`
	Decode      *metadata.Coefficients `json:"decode,omitempty"`
	File        string                 `json:"file,omitempty"`
	Size        []int                  `json:"size,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

type sceneInfo struct {
	Path         string     `json:"path"`
	ID           string     `json:"id"`
	Product      string     `json:"product"`
	Sensor       string     `json:"sensor"`
	Level        string     `json:"processing_level"`
	Collection   int        `json:"collection"`
	Acquired     string     `json:"acquired"`
	SunElevation *float64   `json:"sun_elevation"`
	Footprint    string     `json:"footprint,omitempty"`
	DefaultBands []string   `json:"default_bands"`
	Bands        []bandInfo `json:"bands"`
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: inspect_metadata <scene folder or MTL file>")
		os.Exit(2)
	}
	if err := properties.Load(".env", "../../.env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(properties.LogLevel()); err == nil {
		log.SetLevel(lvl)
	}

	path, err := metadata.Locate(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	m, err := metadata.Parse(path)
	if err != nil {
		log.Fatal(err)
	}

	info := sceneInfo{
		Path:         m.Path,
		ID:           m.ID(),
		Product:      m.Satellite.Product(),
		Sensor:       m.SensorID,
		Level:        m.ProcessingLevel,
		Collection:   m.Collection,
		Acquired:     m.Acquired.Format("2006-01-02T15:04:05Z"),
		DefaultBands: m.DefaultBands(false),
	}
	if !math.IsNaN(m.SunElevation) {
		info.SunElevation = &m.SunElevation
	}
	if m.Footprint != nil {
		info.Footprint = m.Footprint.WKT()
	}

	src := gdalraster.New(log)
	loader := &scene.Loader{Source: src, Log: log}
	for _, cal := range m.Bands() {
		b := bandInfo{
			Name:        cal.Name,
			Variable:    cal.VariableName(),
			Kind:        cal.Kind.String(),
			Units:       cal.Units,
			Radiance:    cal.Radiance,
			Reflectance: cal.Reflectance,
			Decode:      cal.Decode,
		}
		if b.File, err = loader.Resolve(m, cal); err != nil {
			b.Error = err.Error()
		} else if ds, err := src.Open(b.File); err != nil {
			b.Error = err.Error()
		} else {
			b.Size = []int{ds.Width(), ds.Height()}
			ds.Close()
		}
		info.Bands = append(info.Bands, b)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(info); err != nil {
		log.Fatalf("Error encoding JSON: %v", err)
	}
}
