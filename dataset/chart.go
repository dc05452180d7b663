package dataset

import (
	"io"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var barStyle = chart.Style{
	FillColor:   drawing.ColorFromHex("4c78a8"),
	StrokeColor: drawing.ColorFromHex("35557a"),
	StrokeWidth: 1,
}

// RenderPNG draws the histogram as a bar chart, one bar per bin labelled with
// its lower edge.
func (h Histogram) RenderPNG(w io.Writer, width, height int) error {
	bars := make([]chart.Value, len(h.Counts))
	top := 1.0
	for i, c := range h.Counts {
		bars[i] = chart.Value{
			Label: strconv.FormatFloat(h.Edges[i], 'g', 4, 64),
			Value: c,
			Style: barStyle,
		}
		if c > top {
			top = c
		}
	}

	graph := chart.BarChart{
		Title:  h.Column,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		BarWidth:   barWidth(width, len(bars)),
		BarSpacing: 4,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

func barWidth(width, n int) int {
	if n == 0 {
		return 10
	}
	w := (width - 120) / n
	if w < 4 {
		return 4
	}
	return w - 4
}
