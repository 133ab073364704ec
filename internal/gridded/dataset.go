// Package gridded models a self-describing gridded output file and writes it as NetCDF-4.
package gridded

import (
	"errors"
	"fmt"
)

// Attr is a named attribute. Values are string, int16, int32, float32,
// float64 or slices of the numeric types.
type Attr struct {
	Name  string
	Value any
}

// Attrs keeps attributes in insertion order.
type Attrs []Attr

// Set adds or replaces an attribute.
func (a *Attrs) Set(name string, value any) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attr{Name: name, Value: value})
}

func (a Attrs) Get(name string) (any, bool) {
	for _, at := range a {
		if at.Name == name {
			return at.Value, true
		}
	}
	return nil, false
}

type Dimension struct {
	Name string
	Len  int
}

// Variable is an n-dimensional array. Data is one of []int16, []int32,
// []float32 or []float64 in row-major order over Dims.
type Variable struct {
	Name     string
	Dims     []string
	Data     any
	Attrs    Attrs
	Compress bool
}

// Dataset is the whole content of one output file.
type Dataset struct {
	Dims  []Dimension
	Vars  []*Variable
	Attrs Attrs
}

func (d *Dataset) AddDim(name string, n int) {
	d.Dims = append(d.Dims, Dimension{Name: name, Len: n})
}

func (d *Dataset) AddVar(v *Variable) {
	d.Vars = append(d.Vars, v)
}

func (d *Dataset) Var(name string) *Variable {
	for _, v := range d.Vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

func (d *Dataset) dimLen(name string) (int, bool) {
	for _, dim := range d.Dims {
		if dim.Name == name {
			return dim.Len, true
		}
	}
	return 0, false
}

func dataLen(data any) (int, error) {
	switch v := data.(type) {
	case []int16:
		return len(v), nil
	case []int32:
		return len(v), nil
	case []float32:
		return len(v), nil
	case []float64:
		return len(v), nil
	}
	return 0, fmt.Errorf("unsupported data type %T", data)
}

// Validate checks that every variable uses declared dimensions and holds
// exactly as many values as its shape.
func (d *Dataset) Validate() error {
	var errs []error
	for _, v := range d.Vars {
		want := 1
		for _, name := range v.Dims {
			n, ok := d.dimLen(name)
			if !ok {
				errs = append(errs, fmt.Errorf("variable %s: unknown dimension %s", v.Name, name))
				continue
			}
			want *= n
		}
		got, err := dataLen(v.Data)
		if err != nil {
			errs = append(errs, fmt.Errorf("variable %s: %w", v.Name, err))
			continue
		}
		if got != want {
			errs = append(errs, fmt.Errorf("variable %s: %d values for shape %v (%d)", v.Name, got, v.Dims, want))
		}
	}
	return errors.Join(errs...)
}

// Writer persists a Dataset to path.
type Writer interface {
	Write(ds *Dataset, path string) error
}
