package dataset

import (
	"github.com/jonathan/dataqa/internal/datasource"
	"github.com/jonathan/dataqa/internal/types"
)

// Converter adapts one source-specific raw record into canonical units.
type Converter func(rec datasource.Record) (Conversion, error)

// Conversion is the result of converting one raw record: either exactly one
// unit or a sequence of zero or more units. An empty sequence skips the record.
type Conversion struct {
	units []types.Data
	many  bool
}

// One wraps a single unit
func One(d types.Data) Conversion {
	return Conversion{units: []types.Data{d}}
}

// Many wraps a fan-out of units, yielded in order
func Many(units ...types.Data) Conversion {
	return Conversion{units: units, many: true}
}

// Skip drops the record without error
func Skip() Conversion {
	return Many()
}

// IsMany reports whether the conversion is a fan-out
func (c Conversion) IsMany() bool {
	return c.many
}

// Units returns the converted units
func (c Conversion) Units() []types.Data {
	return c.units
}

// Len returns the number of units
func (c Conversion) Len() int {
	return len(c.units)
}
