package chart

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceTable(classes []string, props []float64, flags []bool, thresholds []float64, extra ...series.Series) dataframe.DataFrame {
	cols := []series.Series{
		series.New(classes, series.String, "class"),
		series.New(props, series.Float, "proportion"),
		series.New(flags, series.Bool, "imbalanced"),
		series.New(thresholds, series.Float, "threshold"),
	}
	return dataframe.New(append(cols, extra...)...)
}

func TestPlotBalanceLayered(t *testing.T) {
	table := balanceTable(
		[]string{"A", "B", "C"},
		[]float64{0.4, 0.4, 0.2},
		[]bool{false, false, true},
		[]float64{0.2, 0.2, 0.2},
	)

	c, err := PlotBalance(table, DefaultOptions())
	require.NoError(t, err)
	require.True(t, c.Layered())
	assert.Equal(t, Mark(""), c.Mark())

	bars, ok := c.Layer(MarkBar)
	require.True(t, ok)
	assert.Equal(t, []Bar{
		{Class: "A", Proportion: 0.4},
		{Class: "B", Proportion: 0.4},
		{Class: "C", Proportion: 0.2, Imbalanced: true},
	}, bars.Bars)
	assert.Equal(t, "class", bars.Encoding.X.Field)
	assert.Equal(t, "proportion", bars.Encoding.Y.Field)
	assert.Equal(t, "imbalanced", bars.Encoding.Color.Field)
	assert.Equal(t, []string{"#4F46E5", "#EF4444"}, bars.Encoding.Color.Scale.Range)

	rule, ok := c.Layer(MarkRule)
	require.True(t, ok)
	require.NotNil(t, rule.Y)
	assert.Equal(t, 0.2, *rule.Y)
}

func TestPlotBalanceDomainCoversThreshold(t *testing.T) {
	table := balanceTable(
		[]string{"A", "B", "C"},
		[]float64{0.35, 0.35, 0.3},
		[]bool{false, false, false},
		[]float64{0.5, 0.5, 0.5},
	)
	c, err := PlotBalance(table, Options{})
	require.NoError(t, err)

	bars, _ := c.Layer(MarkBar)
	upper, ok := domainMax(bars.Encoding.Y)
	require.True(t, ok)
	assert.Greater(t, upper, 0.5)

	imbalanced := balanceTable([]string{"A", "B"}, []float64{0.9, 0.1}, []bool{true, true}, []float64{0.2, 0.2})
	c, err = PlotBalance(imbalanced, Options{})
	require.NoError(t, err)
	bars, _ = c.Layer(MarkBar)
	upper, _ = domainMax(bars.Encoding.Y)
	assert.GreaterOrEqual(t, upper, 0.9)
	assert.True(t, c.Layered())
}

func TestPlotBalanceEmpty(t *testing.T) {
	empty := balanceTable(nil, nil, nil, nil)
	c, err := PlotBalance(empty, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, c.Layered())
	assert.Equal(t, MarkText, c.Mark())
	assert.Equal(t, NoDataMessage, c.Layers[0].Text)

	noSchema := dataframe.New(series.New([]string{}, series.String, "whatever"))
	c, err = PlotBalance(noSchema, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, MarkText, c.Mark())
}

func TestPlotBalanceMissingColumns(t *testing.T) {
	table := dataframe.New(
		series.New([]string{"A", "B", "C"}, series.String, "class"),
		series.New([]float64{0.4, 0.4, 0.2}, series.Float, "proportion"),
	)

	_, err := PlotBalance(table, DefaultOptions())
	require.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "input table must contain columns: class, imbalanced, proportion, threshold")
	assert.Contains(t, err.Error(), "missing: imbalanced, threshold")
}

func TestPlotBalanceIgnoresExtraColumns(t *testing.T) {
	table := balanceTable(
		[]string{"A", "B", "C"},
		[]float64{0.4, 0.4, 0.2},
		[]bool{false, false, true},
		[]float64{0.2, 0.2, 0.2},
		series.New([]int{1, 2, 3}, series.Int, "extra"),
	)
	c, err := PlotBalance(table, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, c.Layered())
	assert.Len(t, c.Layers, 2)
}

func TestPlotBalanceFromLoadedRecords(t *testing.T) {
	table := dataframe.LoadRecords([][]string{
		{"class", "proportion", "imbalanced", "threshold"},
		{"1", "0.75", "false", "0.3"},
		{"0", "0.25", "true", "0.3"},
	})
	require.NoError(t, table.Err)

	c, err := PlotBalance(table, DefaultOptions())
	require.NoError(t, err)
	bars, _ := c.Layer(MarkBar)
	assert.Equal(t, "1", bars.Bars[0].Class)
	assert.True(t, bars.Bars[1].Imbalanced)
}

func TestPlotBalanceRejectsNonNumericProportion(t *testing.T) {
	table := dataframe.New(
		series.New([]string{"A"}, series.String, "class"),
		series.New([]string{"lots"}, series.String, "proportion"),
		series.New([]bool{false}, series.Bool, "imbalanced"),
		series.New([]float64{0.2}, series.Float, "threshold"),
	)
	_, err := PlotBalance(table, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proportion")
}

func TestRenderHTML(t *testing.T) {
	table := balanceTable([]string{"spam", "ham"}, []float64{0.15, 0.85}, []bool{true, false}, []float64{0.2, 0.2})
	c, err := PlotBalance(table, Options{Title: "Spam balance"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.RenderHTML(&buf))
	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Spam balance")
	assert.Contains(t, html, "spam")
	assert.Contains(t, html, "threshold")
	assert.Contains(t, html, "#EF4444")
}

func TestRenderHTMLPlaceholder(t *testing.T) {
	c, err := PlotBalance(balanceTable(nil, nil, nil, nil), DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.RenderHTML(&buf))
	assert.Contains(t, buf.String(), NoDataMessage)
}

func TestVegaLite(t *testing.T) {
	table := balanceTable([]string{"A", "B"}, []float64{0.9, 0.1}, []bool{false, true}, []float64{0.2, 0.2})
	c, err := PlotBalance(table, DefaultOptions())
	require.NoError(t, err)

	b, err := json.Marshal(c.VegaLite())
	require.NoError(t, err)
	var spec map[string]any
	require.NoError(t, json.Unmarshal(b, &spec))
	assert.Equal(t, vegaLiteSchema, spec["$schema"])
	layers, ok := spec["layer"].([]any)
	require.True(t, ok)
	require.Len(t, layers, 2)
	rule := layers[1].(map[string]any)
	assert.Equal(t, "rule", rule["mark"].(map[string]any)["type"])

	empty, err := PlotBalance(balanceTable(nil, nil, nil, nil), DefaultOptions())
	require.NoError(t, err)
	doc := empty.VegaLite()
	assert.Nil(t, doc["layer"])
	assert.Equal(t, "text", doc["mark"].(map[string]any)["type"])
	assert.True(t, strings.Contains(doc["encoding"].(map[string]any)["text"].(map[string]any)["value"].(string), "No data"))
}
