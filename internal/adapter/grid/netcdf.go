package grid

import (
	"fmt"
	"time"

	"github.com/fhs/go-netcdf/netcdf"
)

// Variable names written by Write.
const (
	VarSunrise   = "sunrise"
	VarSunset    = "sunset"
	VarDayLength = "day_length"
)

// Write stores d as a NetCDF-4 file with lat/lon coordinate variables.
func Write(path string, d *Daylight) error {
	// Create NetCDF file
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer ds.Close()

	// Create dimensions
	latDim, err := ds.AddDim("lat", uint64(len(d.Lat)))
	if err != nil {
		return err
	}
	lonDim, err := ds.AddDim("lon", uint64(len(d.Lon)))
	if err != nil {
		return err
	}

	// Create coordinate variables
	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	lonVar, err := ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}

	fields := []struct {
		name, units string
		data        []float64
		fill        bool
	}{
		{VarSunrise, "minutes since " + d.Date.Format(time.RFC3339), d.Sunrise, true},
		{VarSunset, "minutes since " + d.Date.Format(time.RFC3339), d.Sunset, true},
		{VarDayLength, "hours", d.DayLength, false},
	}

	vars := make([]netcdf.Var, len(fields))
	for i, f := range fields {
		v, err := ds.AddVar(f.name, netcdf.DOUBLE, []netcdf.Dim{latDim, lonDim})
		if err != nil {
			return err
		}
		if err := v.Attr("units").WriteBytes([]byte(f.units)); err != nil {
			return err
		}
		if f.fill {
			if err := v.Attr("_FillValue").WriteFloat64s([]float64{FillValue}); err != nil {
				return err
			}
		}
		vars[i] = v
	}

	if err := ds.Attr("date").WriteBytes([]byte(d.Date.Format("2006-01-02"))); err != nil {
		return err
	}

	if err := ds.EndDef(); err != nil {
		return err
	}

	if err := latVar.WriteFloat64s(d.Lat); err != nil {
		return err
	}
	if err := lonVar.WriteFloat64s(d.Lon); err != nil {
		return err
	}
	for i, f := range fields {
		if err := vars[i].WriteFloat64s(f.data); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}

	return nil
}

// Read loads a file produced by Write.
func Read(path string) (*Daylight, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer nc.Close()

	out := &Daylight{}

	dateAttr := nc.Attr("date")
	if n, err := dateAttr.Len(); err == nil && n > 0 {
		buf := make([]byte, n)
		if err := dateAttr.ReadBytes(buf); err == nil {
			out.Date, _ = time.Parse("2006-01-02", string(buf))
		}
	}

	if out.Lat, err = readVar(nc, "lat"); err != nil {
		return nil, err
	}
	if out.Lon, err = readVar(nc, "lon"); err != nil {
		return nil, err
	}
	if out.Sunrise, err = readVar(nc, VarSunrise); err != nil {
		return nil, err
	}
	if out.Sunset, err = readVar(nc, VarSunset); err != nil {
		return nil, err
	}
	if out.DayLength, err = readVar(nc, VarDayLength); err != nil {
		return nil, err
	}

	if want := len(out.Lat) * len(out.Lon); len(out.Sunrise) != want {
		return nil, fmt.Errorf("grid size mismatch: %d values for %d cells", len(out.Sunrise), want)
	}
	return out, nil
}

// readVar reads a whole float64 variable of any rank.
func readVar(nc netcdf.Dataset, name string) ([]float64, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", name, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}

	length := uint64(1)
	for _, dim := range dims {
		n, err := dim.Len()
		if err != nil {
			return nil, err
		}
		length *= n
	}

	data := make([]float64, length)
	if err := v.ReadFloat64s(data); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
