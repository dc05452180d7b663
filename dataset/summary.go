package dataset

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// ColumnSummary mirrors the usual describe() output for one column.
type ColumnSummary struct {
	Name   string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	Median float64
	P75    float64
	Max    float64
}

func (t *Table) Summary() ([]ColumnSummary, error) {
	out := make([]ColumnSummary, 0, len(t.columns))
	for _, name := range t.columns {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		s, err := summarize(name, values)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func summarize(name string, values []float64) (ColumnSummary, error) {
	s := ColumnSummary{Name: name, Count: len(values)}
	var err error
	if s.Mean, err = stats.Mean(values); err != nil {
		return s, err
	}
	if len(values) > 1 {
		if s.Std, err = stats.StandardDeviationSample(values); err != nil {
			return s, err
		}
	}
	if s.Min, err = stats.Min(values); err != nil {
		return s, err
	}
	if s.P25, err = stats.PercentileNearestRank(values, 25); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(values); err != nil {
		return s, err
	}
	if s.P75, err = stats.PercentileNearestRank(values, 75); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(values); err != nil {
		return s, err
	}
	return s, nil
}
