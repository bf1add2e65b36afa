package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const vegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// RenderHTML writes the chart as a self-contained ECharts page: bars colored
// by imbalance with the threshold overlaid as a dashed line.
func (c *Chart) RenderHTML(w io.Writer) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.Title,
			Width:     fmt.Sprintf("%dpx", c.Width),
			Height:    fmt.Sprintf("%dpx", c.Height),
		}),
	)

	bars, ok := c.Layer(MarkBar)
	if !ok {
		msg := NoDataMessage
		if l, ok := c.Layer(MarkText); ok && l.Text != "" {
			msg = l.Text
		}
		bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: c.Title, Subtitle: msg}))
		return bar.Render(w)
	}

	labels := make([]string, len(bars.Bars))
	data := make([]opts.BarData, len(bars.Bars))
	balanced, imbalanced := colorRange(bars.Encoding.Color)
	for i, b := range bars.Bars {
		labels[i] = b.Class
		color := balanced
		if b.Imbalanced {
			color = imbalanced
		}
		data[i] = opts.BarData{
			Name:      b.Class,
			Value:     b.Proportion,
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}

	yAxis := opts.YAxis{Name: "proportion", Type: "value", Min: 0}
	if upper, ok := domainMax(bars.Encoding.Y); ok {
		yAxis.Max = upper
	}
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "class"}),
		charts.WithYAxisOpts(yAxis),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("proportion", data)

	if rule, ok := c.Layer(MarkRule); ok && rule.Y != nil {
		line := charts.NewLine()
		line.SetXAxis(labels)
		points := make([]opts.LineData, len(labels))
		for i := range points {
			points[i] = opts.LineData{Value: *rule.Y}
		}
		line.AddSeries("threshold", points,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: rule.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: rule.Color, Width: 2, Type: "dashed"}),
		)
		bar.Overlap(line)
	}
	return bar.Render(w)
}

// VegaLite returns the chart as a Vega-Lite v5 specification.
func (c *Chart) VegaLite() map[string]any {
	spec := map[string]any{
		"$schema": vegaLiteSchema,
		"title":   c.Title,
		"width":   c.Width,
		"height":  c.Height,
	}
	if !c.Layered() {
		text := NoDataMessage
		if len(c.Layers) == 1 && c.Layers[0].Text != "" {
			text = c.Layers[0].Text
		}
		spec["data"] = map[string]any{"values": []map[string]any{{}}}
		spec["mark"] = map[string]any{"type": string(MarkText), "fontSize": 16}
		spec["encoding"] = map[string]any{"text": map[string]any{"value": text}}
		return spec
	}

	layers := make([]map[string]any, 0, len(c.Layers))
	for _, l := range c.Layers {
		switch l.Mark {
		case MarkBar:
			values := make([]map[string]any, len(l.Bars))
			for i, b := range l.Bars {
				values[i] = map[string]any{"class": b.Class, "proportion": b.Proportion, "imbalanced": b.Imbalanced}
			}
			x := l.Encoding.X.vega()
			x["sort"] = nil
			layers = append(layers, map[string]any{
				"data": map[string]any{"values": values},
				"mark": map[string]any{"type": string(MarkBar)},
				"encoding": map[string]any{
					"x":     x,
					"y":     l.Encoding.Y.vega(),
					"color": l.Encoding.Color.vega(),
				},
			})
		case MarkRule:
			if l.Y == nil {
				continue
			}
			layers = append(layers, map[string]any{
				"data":     map[string]any{"values": []map[string]any{{"threshold": *l.Y}}},
				"mark":     map[string]any{"type": string(MarkRule), "color": l.Color, "strokeDash": []int{6, 4}, "size": 2},
				"encoding": map[string]any{"y": l.Encoding.Y.vega()},
			})
		}
	}
	spec["layer"] = layers
	return spec
}

func (ch *Channel) vega() map[string]any {
	if ch == nil {
		return map[string]any{}
	}
	m := map[string]any{"field": ch.Field, "type": ch.Type}
	if ch.Title != "" {
		m["title"] = ch.Title
	}
	if ch.Scale != nil {
		s := map[string]any{}
		if len(ch.Scale.Domain) > 0 {
			s["domain"] = ch.Scale.Domain
		}
		if len(ch.Scale.Range) > 0 {
			s["range"] = ch.Scale.Range
		}
		m["scale"] = s
	}
	return m
}

func colorRange(ch *Channel) (balanced, imbalanced string) {
	d := DefaultOptions()
	balanced, imbalanced = d.BalancedColor, d.ImbalancedColor
	if ch == nil || ch.Scale == nil || len(ch.Scale.Range) < 2 {
		return balanced, imbalanced
	}
	return ch.Scale.Range[0], ch.Scale.Range[1]
}

func domainMax(ch *Channel) (float64, bool) {
	if ch == nil || ch.Scale == nil || len(ch.Scale.Domain) < 2 {
		return 0, false
	}
	v, ok := ch.Scale.Domain[len(ch.Scale.Domain)-1].(float64)
	return v, ok
}
