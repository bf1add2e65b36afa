// Package summary computes target-column summaries: class balance for
// categorical targets and mean/standard deviation for numerical ones.
package summary

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/summarease-cli/internal/dataset"
)

// TargetType selects how the target column is summarized.
type TargetType string

const (
	Categorical TargetType = "categorical"
	Numerical   TargetType = "numerical"
)

// DefaultThreshold is used for categorical targets when no threshold is given.
const DefaultThreshold = 0.2

// ThresholdUnused is the advisory emitted when a threshold accompanies a numerical target.
const ThresholdUnused = "threshold is not used for numerical targets"

// Column names of summary tables.
const (
	ColClass      = "class"
	ColProportion = "proportion"
	ColImbalanced = "imbalanced"
	ColThreshold  = "threshold"
	ColColumn     = "column"
	ColMean       = "mean"
	ColStd        = "std"
)

var (
	ErrColumnNotFound   = errors.New("column not found")
	ErrInvalidType      = errors.New("invalid target type")
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrNonNumeric       = errors.New("non-numeric target")
)

// Options controls a Summarize call.
type Options struct {
	// Threshold is the imbalance cutoff in [0,1]. Nil means omitted:
	// categorical targets fall back to DefaultThreshold.
	Threshold *float64
	// Numbers configures parsing of numerical targets stored as text.
	Numbers dataset.NumberFormat
	// Logger receives advisories. Nil uses slog.Default().
	Logger *slog.Logger
}

// WithThreshold returns a copy of o with the threshold set.
func (o Options) WithThreshold(v float64) Options {
	o.Threshold = &v
	return o
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// ClassBalance is one row of a categorical summary.
type ClassBalance struct {
	Class      string
	Count      int
	Proportion float64
	Imbalanced bool
}

// NumericStats holds the descriptive statistics of a numerical target.
// Std is the sample standard deviation; it is NaN for a single value.
type NumericStats struct {
	Count int
	Mean  float64
	Std   float64
}

// Summary is the result of Summarize. Frame carries the summary as a data
// frame; Classes and Stats are typed views of the same rows.
type Summary struct {
	Target    string
	Type      TargetType
	Threshold float64 // categorical only
	Rows      int     // input rows
	Counted   int     // non-missing target values
	Classes   []ClassBalance
	Stats     *NumericStats
	Frame     dataframe.DataFrame
	Warnings  []string
}

// Empty reports whether no summary rows were produced.
func (s *Summary) Empty() bool { return s.Frame.Nrow() == 0 }

// ParseTargetType maps user input onto a TargetType.
func ParseTargetType(s string) (TargetType, error) {
	switch t := TargetType(strings.ToLower(strings.TrimSpace(s))); t {
	case Categorical, Numerical:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q (use categorical or numerical)", ErrInvalidType, s)
	}
}

// Summarize summarizes the target column of data. Categorical targets yield
// one row per distinct value in first-seen order; numerical targets yield a
// single mean/std row keyed by the column name.
func Summarize(data dataframe.DataFrame, target string, kind TargetType, opt Options) (*Summary, error) {
	if kind != Categorical && kind != Numerical {
		return nil, fmt.Errorf("%w: %q (use categorical or numerical)", ErrInvalidType, string(kind))
	}
	if opt.Threshold != nil {
		t := *opt.Threshold
		if math.IsNaN(t) || t < 0 || t > 1 {
			return nil, fmt.Errorf("%w: %v is outside [0, 1]", ErrInvalidThreshold, t)
		}
	}
	if data.Err != nil {
		return nil, fmt.Errorf("input table: %w", data.Err)
	}
	if !dataset.HasColumn(data, target) {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrColumnNotFound, target, strings.Join(data.Names(), ", "))
	}
	col := data.Col(target)

	if kind == Numerical {
		s := &Summary{Target: target, Type: Numerical, Rows: data.Nrow()}
		if opt.Threshold != nil {
			s.Warnings = append(s.Warnings, ThresholdUnused)
			opt.logger().Warn(ThresholdUnused, "target", target, "threshold", *opt.Threshold)
		}
		if err := summarizeNumerical(s, col, opt.Numbers); err != nil {
			return nil, err
		}
		return s, nil
	}

	threshold := DefaultThreshold
	if opt.Threshold != nil {
		threshold = *opt.Threshold
	}
	s := &Summary{Target: target, Type: Categorical, Threshold: threshold, Rows: data.Nrow()}
	summarizeCategorical(s, col)
	opt.logger().Debug("categorical summary", "target", target, "classes", len(s.Classes), "counted", s.Counted)
	return s, nil
}

func summarizeCategorical(s *Summary, col series.Series) {
	index := map[string]int{}
	for i := 0; i < col.Len(); i++ {
		if dataset.IsMissing(col, i) {
			continue
		}
		label := classLabel(col, i)
		j, ok := index[label]
		if !ok {
			j = len(s.Classes)
			index[label] = j
			s.Classes = append(s.Classes, ClassBalance{Class: label})
		}
		s.Classes[j].Count++
		s.Counted++
	}

	n := len(s.Classes)
	classes := make([]string, n)
	props := make([]float64, n)
	flags := make([]bool, n)
	thresholds := make([]float64, n)
	for i := range s.Classes {
		c := &s.Classes[i]
		c.Proportion = float64(c.Count) / float64(s.Counted)
		c.Imbalanced = c.Proportion < s.Threshold
		classes[i] = c.Class
		props[i] = c.Proportion
		flags[i] = c.Imbalanced
		thresholds[i] = s.Threshold
	}
	s.Frame = dataframe.New(
		series.New(classes, series.String, ColClass),
		series.New(props, series.Float, ColProportion),
		series.New(flags, series.Bool, ColImbalanced),
		series.New(thresholds, series.Float, ColThreshold),
	)
}

func summarizeNumerical(s *Summary, col series.Series, nf dataset.NumberFormat) error {
	vals, err := dataset.Floats(col, nf)
	if err != nil {
		return fmt.Errorf("%w: column %q: %v", ErrNonNumeric, s.Target, err)
	}
	s.Counted = len(vals)
	var names []string
	var means, stds []float64
	if len(vals) > 0 {
		s.Stats = &NumericStats{
			Count: len(vals),
			Mean:  stat.Mean(vals, nil),
			Std:   stat.StdDev(vals, nil),
		}
		names = []string{s.Target}
		means = []float64{s.Stats.Mean}
		stds = []float64{s.Stats.Std}
	}
	s.Frame = dataframe.New(
		series.New(names, series.String, ColColumn),
		series.New(means, series.Float, ColMean),
		series.New(stds, series.Float, ColStd),
	)
	return nil
}

// classLabel renders element i of s as a class name. Floats use the shortest
// representation so 1.0 and 1 group together.
func classLabel(s series.Series, i int) string {
	e := s.Elem(i)
	if s.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'g', -1, 64)
	}
	return e.String()
}
