package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Markdown renders a compact report suitable for notes or standalone docs.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[TARGET SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Target: %s (%s)\n", safeVal(s.Target), s.Type))
	b.WriteString(fmt.Sprintf("Rows: %d (non-missing %d)\n", s.Rows, s.Counted))
	if s.Type == Categorical {
		b.WriteString(fmt.Sprintf("Threshold: %.4g\n", s.Threshold))
	}
	b.WriteString("\n")

	switch s.Type {
	case Categorical:
		b.WriteString("[CLASS BALANCE]\n")
		if len(s.Classes) == 0 {
			b.WriteString("No data to display\n")
			break
		}
		b.WriteString("| class | count | proportion | imbalanced |\n")
		b.WriteString("|---|---:|---:|---|\n")
		for _, c := range s.Classes {
			b.WriteString(fmt.Sprintf("| %s | %d | %.4f | %t |\n", safeVal(c.Class), c.Count, c.Proportion, c.Imbalanced))
		}
		if n := countImbalanced(s.Classes); n > 0 {
			b.WriteString(fmt.Sprintf("\n%d of %d classes fall below the threshold.\n", n, len(s.Classes)))
		}
	case Numerical:
		b.WriteString("[DESCRIPTIVE STATISTICS]\n")
		if s.Stats == nil {
			b.WriteString("No data to display\n")
			break
		}
		b.WriteString("| column | mean | std |\n")
		b.WriteString("|---|---:|---:|\n")
		b.WriteString(fmt.Sprintf("| %s | %.4g | %.4g |\n", safeVal(s.Target), s.Stats.Mean, s.Stats.Std))
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range s.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

// Table renders the summary as a terminal table. With colorize, imbalanced
// classes are highlighted.
func (s *Summary) Table(colorize bool) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(fmt.Sprintf("%s (%s)", s.Target, s.Type))

	switch s.Type {
	case Categorical:
		tbl.AppendHeader(table.Row{"class", "count", "proportion", "imbalanced"})
		warn := color.New(color.FgRed, color.Bold)
		for _, c := range s.Classes {
			flag := fmt.Sprintf("%t", c.Imbalanced)
			if colorize && c.Imbalanced {
				flag = warn.Sprint(flag)
			}
			tbl.AppendRow(table.Row{c.Class, c.Count, fmt.Sprintf("%.4f", c.Proportion), flag})
		}
		tbl.AppendFooter(table.Row{"threshold", s.Counted, fmt.Sprintf("%.4g", s.Threshold), countImbalanced(s.Classes)})
	case Numerical:
		tbl.AppendHeader(table.Row{"column", "count", "mean", "std"})
		if s.Stats != nil {
			tbl.AppendRow(table.Row{s.Target, s.Stats.Count, fmt.Sprintf("%.6g", s.Stats.Mean), fmt.Sprintf("%.6g", s.Stats.Std)})
		}
	}
	return tbl.Render()
}

// WriteCSV writes the summary table as CSV.
func (s *Summary) WriteCSV(w io.Writer) error {
	if err := s.Frame.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

type document struct {
	Target    string       `json:"target" yaml:"target"`
	Type      TargetType   `json:"type" yaml:"type"`
	Rows      int          `json:"rows" yaml:"rows"`
	Counted   int          `json:"counted" yaml:"counted"`
	Threshold *float64     `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Classes   []classEntry `json:"classes,omitempty" yaml:"classes,omitempty"`
	Stats     *statsEntry  `json:"stats,omitempty" yaml:"stats,omitempty"`
	Warnings  []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type classEntry struct {
	Class      string  `json:"class" yaml:"class"`
	Count      int     `json:"count" yaml:"count"`
	Proportion float64 `json:"proportion" yaml:"proportion"`
	Imbalanced bool    `json:"imbalanced" yaml:"imbalanced"`
}

// statsEntry uses pointers so NaN serializes as null.
type statsEntry struct {
	Count int      `json:"count" yaml:"count"`
	Mean  *float64 `json:"mean" yaml:"mean"`
	Std   *float64 `json:"std" yaml:"std"`
}

func (s *Summary) document() document {
	d := document{
		Target:   s.Target,
		Type:     s.Type,
		Rows:     s.Rows,
		Counted:  s.Counted,
		Warnings: s.Warnings,
	}
	if s.Type == Categorical {
		t := s.Threshold
		d.Threshold = &t
		d.Classes = make([]classEntry, 0, len(s.Classes))
		for _, c := range s.Classes {
			d.Classes = append(d.Classes, classEntry(c))
		}
	}
	if s.Stats != nil {
		d.Stats = &statsEntry{Count: s.Stats.Count, Mean: finite(s.Stats.Mean), Std: finite(s.Stats.Std)}
	}
	return d
}

// JSON renders the summary as indented JSON.
func (s *Summary) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(s.document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// YAML renders the summary as YAML.
func (s *Summary) YAML() ([]byte, error) {
	b, err := yaml.Marshal(s.document())
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func countImbalanced(classes []ClassBalance) int {
	n := 0
	for _, c := range classes {
		if c.Imbalanced {
			n++
		}
	}
	return n
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
