package summary

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func stringFrame(name string, vals ...string) dataframe.DataFrame {
	return dataframe.New(series.New(vals, series.String, name))
}

func floatFrame(name string, vals ...float64) dataframe.DataFrame {
	return dataframe.New(series.New(vals, series.Float, name))
}

func TestCategoricalProportionsFirstSeenOrder(t *testing.T) {
	data := stringFrame("target", "x", "y", "z", "x", "y", "y")

	s, err := Summarize(data, "target", Categorical, quiet().WithThreshold(0.2))
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y", "z"}, s.Frame.Col(ColClass).Records())
	assert.InDeltaSlice(t, []float64{2.0 / 6, 3.0 / 6, 1.0 / 6}, s.Frame.Col(ColProportion).Float(), 1e-12)
	for _, th := range s.Frame.Col(ColThreshold).Float() {
		assert.Equal(t, 0.2, th)
	}
	assert.Equal(t, 6, s.Counted)
	assert.Equal(t, []int{2, 3, 1}, []int{s.Classes[0].Count, s.Classes[1].Count, s.Classes[2].Count})
}

func TestCategoricalImbalanceFlag(t *testing.T) {
	data := stringFrame("target", "x", "y", "z", "x", "y", "y")

	s, err := Summarize(data, "target", Categorical, quiet().WithThreshold(0.2))
	require.NoError(t, err)

	flags, err := s.Frame.Col(ColImbalanced).Bool()
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true}, flags)
}

func TestCategoricalInvariants(t *testing.T) {
	inputs := [][]string{
		{"a"},
		{"x", "y", "z", "x", "y", "y"},
		append(strings.Split(strings.Repeat("x", 99), ""), "y"),
		strings.Split(strings.Repeat("xyz", 10), ""),
		{"cat", "dog", "dog", "bird", "cat", "cat", "fish"},
	}
	for _, th := range []float64{0, 0.1, 0.2, 0.5, 1} {
		for _, in := range inputs {
			s, err := Summarize(stringFrame("target", in...), "target", Categorical, quiet().WithThreshold(th))
			require.NoError(t, err)

			sum := 0.0
			for _, c := range s.Classes {
				sum += c.Proportion
				assert.Equal(t, c.Proportion < th, c.Imbalanced, "class %s threshold %v", c.Class, th)
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		}
	}
}

func TestCategoricalExtremeAndEqual(t *testing.T) {
	extreme := append(strings.Split(strings.Repeat("x", 99), ""), "y")
	s, err := Summarize(stringFrame("target", extreme...), "target", Categorical, quiet().WithThreshold(0.2))
	require.NoError(t, err)
	assert.Equal(t, []ClassBalance{
		{Class: "x", Count: 99, Proportion: 0.99, Imbalanced: false},
		{Class: "y", Count: 1, Proportion: 0.01, Imbalanced: true},
	}, s.Classes)

	equal := strings.Split(strings.Repeat("xyz", 10), "")
	s, err = Summarize(stringFrame("target", equal...), "target", Categorical, quiet().WithThreshold(0.2))
	require.NoError(t, err)
	flags, err := s.Frame.Col(ColImbalanced).Bool()
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false}, flags)
}

func TestCategoricalDefaultThreshold(t *testing.T) {
	data := stringFrame("target", "x", "y", "z", "x", "y", "y")

	s, err := Summarize(data, "target", Categorical, quiet())
	require.NoError(t, err)
	assert.Equal(t, DefaultThreshold, s.Threshold)
	assert.Contains(t, s.Frame.Names(), ColImbalanced)
	for _, th := range s.Frame.Col(ColThreshold).Float() {
		assert.Equal(t, 0.2, th)
	}
	assert.Empty(t, s.Warnings)
}

func TestCategoricalEmptyKeepsSchema(t *testing.T) {
	s, err := Summarize(stringFrame("target"), "target", Categorical, quiet().WithThreshold(0.2))
	require.NoError(t, err)
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Frame.Nrow())
	assert.Equal(t, []string{ColClass, ColProportion, ColImbalanced, ColThreshold}, s.Frame.Names())
}

func TestCategoricalSkipsMissing(t *testing.T) {
	data := dataframe.LoadRecords([][]string{{"target"}, {"a"}, {"NA"}, {"b"}, {"a"}})
	require.NoError(t, data.Err)

	s, err := Summarize(data, "target", Categorical, quiet())
	require.NoError(t, err)
	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 3, s.Counted)
	assert.Len(t, s.Classes, 2)
}

func TestCategoricalNumericLabels(t *testing.T) {
	s, err := Summarize(floatFrame("score", 1, 2.5, 1), "score", Categorical, quiet())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2.5"}, []string{s.Classes[0].Class, s.Classes[1].Class})

	ints := dataframe.New(series.New([]int{0, 1, 1, 1, 1, 1}, series.Int, "label"))
	s, err = Summarize(ints, "label", Categorical, quiet())
	require.NoError(t, err)
	assert.Equal(t, "0", s.Classes[0].Class)
	assert.True(t, s.Classes[0].Imbalanced)
}

func TestMissingColumn(t *testing.T) {
	data := dataframe.New(series.New([]int{1, 2, 3}, series.Int, "other_column"))

	_, err := Summarize(data, "target", Categorical, quiet())
	require.ErrorIs(t, err, ErrColumnNotFound)

	_, err = Summarize(data, "target", Numerical, quiet())
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestInvalidTargetType(t *testing.T) {
	data := floatFrame("target", 1, 2, 3)

	_, err := Summarize(data, "target", TargetType("invalid_type"), quiet())
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = ParseTargetType("ordinal")
	require.ErrorIs(t, err, ErrInvalidType)

	tt, err := ParseTargetType(" Numerical ")
	require.NoError(t, err)
	assert.Equal(t, Numerical, tt)
}

func TestInvalidThreshold(t *testing.T) {
	data := stringFrame("target", "x", "x", "z", "x", "y", "z")

	for _, th := range []float64{-0.1, 1.5, math.NaN()} {
		_, err := Summarize(data, "target", Categorical, quiet().WithThreshold(th))
		require.ErrorIs(t, err, ErrInvalidThreshold, "threshold %v", th)
	}
	for _, th := range []float64{0, 1} {
		_, err := Summarize(data, "target", Categorical, quiet().WithThreshold(th))
		require.NoError(t, err, "threshold %v", th)
	}
}

func TestNumericalDescriptiveStatistics(t *testing.T) {
	var logs bytes.Buffer
	opt := Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))}.WithThreshold(0.5)

	s, err := Summarize(floatFrame("target", 1, 2, 3, 4, 5), "target", Numerical, opt)
	require.NoError(t, err)

	require.NotNil(t, s.Stats)
	assert.Equal(t, 3.0, s.Stats.Mean)
	assert.InDelta(t, 1.5811, s.Stats.Std, 1e-4)
	assert.Equal(t, []string{"target"}, s.Frame.Col(ColColumn).Records())
	assert.Equal(t, 3.0, s.Frame.Col(ColMean).Float()[0])

	assert.Equal(t, []string{ThresholdUnused}, s.Warnings)
	assert.Contains(t, logs.String(), ThresholdUnused)
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestNumericalIdenticalValues(t *testing.T) {
	s, err := Summarize(floatFrame("target", 5, 5, 5, 5, 5), "target", Numerical, quiet().WithThreshold(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Stats.Std)
	assert.Equal(t, 5.0, s.Stats.Mean)
}

func TestNumericalWithoutThreshold(t *testing.T) {
	s, err := Summarize(floatFrame("target", 1, 2, 3, 4, 5), "target", Numerical, quiet())
	require.NoError(t, err)
	assert.Empty(t, s.Warnings)
	assert.Equal(t, 0.0, s.Threshold)
}

func TestNumericalLargeRange(t *testing.T) {
	s, err := Summarize(floatFrame("target", 1e8, 2e8, 3e8, 4e8, 5e8), "target", Numerical, quiet().WithThreshold(0.5))
	require.NoError(t, err)
	assert.False(t, s.Empty())
	assert.InDelta(t, 3e8, s.Stats.Mean, 1e-3)
	assert.InDelta(t, 1.5811388e8, s.Stats.Std, 1e2)
}

func TestNumericalEmpty(t *testing.T) {
	s, err := Summarize(floatFrame("target"), "target", Numerical, quiet())
	require.NoError(t, err)
	assert.True(t, s.Empty())
	assert.Nil(t, s.Stats)
	assert.Equal(t, []string{ColColumn, ColMean, ColStd}, s.Frame.Names())
}

func TestNumericalSingleValueHasUndefinedStd(t *testing.T) {
	s, err := Summarize(floatFrame("target", 7), "target", Numerical, quiet())
	require.NoError(t, err)
	assert.Equal(t, 7.0, s.Stats.Mean)
	assert.True(t, math.IsNaN(s.Stats.Std))
}

func TestNumericalParsesText(t *testing.T) {
	data := stringFrame("price", "1.000,5", "2.000,5", "")
	s, err := Summarize(data, "price", Numerical, quiet())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Counted)
	assert.InDelta(t, 1500.5, s.Stats.Mean, 1e-9)

	_, err = Summarize(stringFrame("price", "1", "cheap"), "price", Numerical, quiet())
	require.ErrorIs(t, err, ErrNonNumeric)
}
