// Package chart describes and renders class-balance charts for categorical
// target summaries.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Mark is the graphical primitive of a layer.
type Mark string

const (
	MarkBar  Mark = "bar"
	MarkRule Mark = "rule"
	MarkText Mark = "text"
)

// NoDataMessage is the placeholder shown for an empty summary.
const NoDataMessage = "No data to display"

// yHeadroom scales the y domain above the tallest element.
const yHeadroom = 1.1

// requiredColumns are the columns a balance table must carry, sorted.
var requiredColumns = []string{"class", "imbalanced", "proportion", "threshold"}

// ErrMissingColumns is returned when the input table lacks a required column.
var ErrMissingColumns = errors.New("input table must contain columns: " + strings.Join(requiredColumns, ", "))

// Options controls chart presentation.
type Options struct {
	Title           string
	Width           int
	Height          int
	BalancedColor   string
	ImbalancedColor string
	ThresholdColor  string
}

// DefaultOptions returns the default presentation.
func DefaultOptions() Options {
	return Options{
		Title:           "Class balance",
		Width:           600,
		Height:          400,
		BalancedColor:   "#4F46E5",
		ImbalancedColor: "#EF4444",
		ThresholdColor:  "#F59E0B",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.BalancedColor == "" {
		o.BalancedColor = d.BalancedColor
	}
	if o.ImbalancedColor == "" {
		o.ImbalancedColor = d.ImbalancedColor
	}
	if o.ThresholdColor == "" {
		o.ThresholdColor = d.ThresholdColor
	}
	return o
}

// Chart is a renderer-independent layered chart description.
type Chart struct {
	Title  string  `json:"title"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Layers []Layer `json:"layers"`
}

// Layer is one mark drawn over shared axes.
type Layer struct {
	Mark     Mark     `json:"mark"`
	Bars     []Bar    `json:"bars,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Text     string   `json:"text,omitempty"`
	Color    string   `json:"color,omitempty"`
	Encoding Encoding `json:"encoding"`
}

// Bar is one class of the bar layer.
type Bar struct {
	Class      string  `json:"class"`
	Proportion float64 `json:"proportion"`
	Imbalanced bool    `json:"imbalanced"`
}

// Encoding maps data fields to visual channels.
type Encoding struct {
	X     *Channel `json:"x,omitempty"`
	Y     *Channel `json:"y,omitempty"`
	Color *Channel `json:"color,omitempty"`
}

// Channel binds a field to a visual channel.
type Channel struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	Scale *Scale `json:"scale,omitempty"`
}

// Scale fixes a channel's domain and, for colors, its range.
type Scale struct {
	Domain []any    `json:"domain,omitempty"`
	Range  []string `json:"range,omitempty"`
}

// Layered reports whether the chart overlays more than one layer.
func (c *Chart) Layered() bool { return len(c.Layers) > 1 }

// Mark returns the mark of a single-layer chart, or "" for layered charts.
func (c *Chart) Mark() Mark {
	if len(c.Layers) != 1 {
		return ""
	}
	return c.Layers[0].Mark
}

// Layer returns the first layer with mark m.
func (c *Chart) Layer(m Mark) (Layer, bool) {
	for _, l := range c.Layers {
		if l.Mark == m {
			return l, true
		}
	}
	return Layer{}, false
}

// PlotBalance describes a class-balance chart for a categorical summary
// table. The table needs class, proportion, imbalanced and threshold columns;
// other columns are ignored. An empty table yields a text placeholder.
func PlotBalance(table dataframe.DataFrame, opt Options) (*Chart, error) {
	opt = opt.withDefaults()
	if table.Err != nil {
		return nil, fmt.Errorf("input table: %w", table.Err)
	}
	c := &Chart{Title: opt.Title, Width: opt.Width, Height: opt.Height}
	if table.Nrow() == 0 {
		c.Layers = []Layer{{Mark: MarkText, Text: NoDataMessage}}
		return c, nil
	}

	present := map[string]bool{}
	for _, n := range table.Names() {
		present[n] = true
	}
	var missing []string
	for _, n := range requiredColumns {
		if !present[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w (missing: %s)", ErrMissingColumns, strings.Join(missing, ", "))
	}

	bars, threshold, err := readBalance(table)
	if err != nil {
		return nil, err
	}
	top := threshold
	for _, b := range bars {
		top = math.Max(top, b.Proportion)
	}
	upper := 1.0
	if top > 0 {
		upper = top * yHeadroom
	}

	y := &Channel{Field: "proportion", Type: "quantitative", Title: "Proportion", Scale: &Scale{Domain: []any{0.0, upper}}}
	c.Layers = []Layer{
		{
			Mark: MarkBar,
			Bars: bars,
			Encoding: Encoding{
				X: &Channel{Field: "class", Type: "nominal", Title: "Class"},
				Y: y,
				Color: &Channel{Field: "imbalanced", Type: "nominal", Title: "Imbalanced", Scale: &Scale{
					Domain: []any{false, true},
					Range:  []string{opt.BalancedColor, opt.ImbalancedColor},
				}},
			},
		},
		{
			Mark:     MarkRule,
			Y:        &threshold,
			Color:    opt.ThresholdColor,
			Encoding: Encoding{Y: &Channel{Field: "threshold", Type: "quantitative", Scale: y.Scale}},
		},
	}
	return c, nil
}

func readBalance(table dataframe.DataFrame) ([]Bar, float64, error) {
	classes := table.Col("class")
	props := table.Col("proportion")
	thresholds := table.Col("threshold")
	flags, err := table.Col("imbalanced").Bool()
	if err != nil {
		return nil, 0, fmt.Errorf("column imbalanced: %w", err)
	}

	bars := make([]Bar, table.Nrow())
	for i := range bars {
		p := props.Elem(i).Float()
		if math.IsNaN(p) {
			return nil, 0, fmt.Errorf("column proportion: row %d is not a number", i+1)
		}
		bars[i] = Bar{Class: label(classes, i), Proportion: p, Imbalanced: flags[i]}
	}
	threshold := thresholds.Elem(0).Float()
	if math.IsNaN(threshold) {
		return nil, 0, errors.New("column threshold: row 1 is not a number")
	}
	return bars, threshold, nil
}

func label(s series.Series, i int) string {
	e := s.Elem(i)
	if s.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'g', -1, 64)
	}
	return e.String()
}
