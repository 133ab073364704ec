// Package ncwriter writes gridded datasets as NetCDF-4 files.
package ncwriter

import (
	"fmt"
	"os"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/surftemp/landsat-importer/internal/gridded"
)

var _ gridded.Writer = (*Writer)(nil)

// Writer writes NetCDF-4 files, deflating variables marked Compress.
type Writer struct {
	DeflateLevel int
}

func New() *Writer {
	return &Writer{DeflateLevel: 5}
}

// Write creates the file next to path and renames it into place once complete,
// so an interrupted run never leaves a truncated output behind.
func (w *Writer) Write(ds *gridded.Dataset, path string) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	tmp := path + ".partial"
	if err := w.write(ds, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

func (w *Writer) write(ds *gridded.Dataset, path string) (err error) {
	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := nc.Close(); err == nil {
			err = cerr
		}
	}()

	dims := map[string]netcdf.Dim{}
	for _, d := range ds.Dims {
		dim, err := nc.AddDim(d.Name, uint64(d.Len))
		if err != nil {
			return fmt.Errorf("dimension %s: %w", d.Name, err)
		}
		dims[d.Name] = dim
	}

	vars := make([]netcdf.Var, len(ds.Vars))
	for i, v := range ds.Vars {
		var vdims []netcdf.Dim
		for _, name := range v.Dims {
			vdims = append(vdims, dims[name])
		}
		t, err := ncType(v.Data)
		if err != nil {
			return fmt.Errorf("variable %s: %w", v.Name, err)
		}
		nv, err := nc.AddVar(v.Name, t, vdims)
		if err != nil {
			return fmt.Errorf("variable %s: %w", v.Name, err)
		}
		if v.Compress && len(vdims) > 0 {
			if err := nv.SetCompression(true, true, w.DeflateLevel); err != nil {
				return fmt.Errorf("variable %s compression: %w", v.Name, err)
			}
		}
		for _, a := range v.Attrs {
			if err := writeAttr(nv.Attr(a.Name), a.Value); err != nil {
				return fmt.Errorf("variable %s attribute %s: %w", v.Name, a.Name, err)
			}
		}
		vars[i] = nv
	}
	for _, a := range ds.Attrs {
		if err := writeAttr(nc.Attr(a.Name), a.Value); err != nil {
			return fmt.Errorf("global attribute %s: %w", a.Name, err)
		}
	}
	if err := nc.EndDef(); err != nil {
		return err
	}

	for i, v := range ds.Vars {
		if err := writeData(vars[i], v.Data); err != nil {
			return fmt.Errorf("variable %s data: %w", v.Name, err)
		}
	}
	return nil
}

func ncType(data any) (netcdf.Type, error) {
	switch data.(type) {
	case []int16:
		return netcdf.SHORT, nil
	case []int32:
		return netcdf.INT, nil
	case []float32:
		return netcdf.FLOAT, nil
	case []float64:
		return netcdf.DOUBLE, nil
	}
	return 0, fmt.Errorf("unsupported data type %T", data)
}

func writeData(v netcdf.Var, data any) error {
	switch d := data.(type) {
	case []int16:
		return v.WriteInt16s(d)
	case []int32:
		return v.WriteInt32s(d)
	case []float32:
		return v.WriteFloat32s(d)
	case []float64:
		return v.WriteFloat64s(d)
	}
	return fmt.Errorf("unsupported data type %T", data)
}

func writeAttr(a netcdf.Attr, value any) error {
	switch v := value.(type) {
	case string:
		return a.WriteBytes([]byte(v))
	case int16:
		return a.WriteInt16s([]int16{v})
	case int32:
		return a.WriteInt32s([]int32{v})
	case float32:
		return a.WriteFloat32s([]float32{v})
	case float64:
		return a.WriteFloat64s([]float64{v})
	case []int16:
		return a.WriteInt16s(v)
	case []int32:
		return a.WriteInt32s(v)
	case []float64:
		return a.WriteFloat64s(v)
	}
	return fmt.Errorf("unsupported attribute type %T", value)
}
