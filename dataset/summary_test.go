package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	table := loadFixture(t)

	summaries, err := table.Summary()
	require.NoError(t, err)
	require.Len(t, summaries, len(diabetesColumns))

	glucose := summaries[1]
	assert.Equal(t, "Glucose", glucose.Name)
	assert.Equal(t, 5, glucose.Count)
	assert.InDelta(t, 128.4, glucose.Mean, 1e-9)
	assert.Equal(t, 85.0, glucose.Min)
	assert.Equal(t, 137.0, glucose.Median)
	assert.Equal(t, 183.0, glucose.Max)
	assert.Greater(t, glucose.Std, 0.0)
	assert.LessOrEqual(t, glucose.P25, glucose.Median)
	assert.GreaterOrEqual(t, glucose.P75, glucose.Median)
}

func TestSummarySingleRow(t *testing.T) {
	table, err := NewTable([]string{"x"}, [][]float64{{3}})
	require.NoError(t, err)

	summaries, err := table.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3.0, summaries[0].Mean)
	assert.Equal(t, 0.0, summaries[0].Std)
}

func TestSummarySmallColumns(t *testing.T) {
	table, err := NewTable([]string{"x"}, [][]float64{{1}, {2}, {3}})
	require.NoError(t, err)

	summaries, err := table.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1.0, summaries[0].P25)
	assert.Equal(t, 2.0, summaries[0].Median)
	assert.Equal(t, 3.0, summaries[0].P75)
}
