package dataset

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins matches the bin count of the usual dataframe hist() call.
const DefaultBins = 10

// Histogram holds bin counts for one column. Bin i covers
// [Edges[i], Edges[i+1]); the last bin also includes the column maximum.
type Histogram struct {
	Column string
	Edges  []float64
	Counts []float64
}

func (t *Table) Histogram(column string, bins int) (Histogram, error) {
	if bins <= 0 {
		return Histogram{}, errors.New("bins must be positive")
	}
	values, err := t.Column(column)
	if err != nil {
		return Histogram{}, err
	}
	sort.Float64s(values)

	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)

	// stat.Histogram bins are half-open, so push the last divider just past
	// the maximum to keep it in the final bin.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	return Histogram{
		Column: column,
		Edges:  edges,
		Counts: stat.Histogram(nil, dividers, values, nil),
	}, nil
}

func (h Histogram) Total() float64 {
	return floats.Sum(h.Counts)
}
