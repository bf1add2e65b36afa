package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/summarease-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/summarease-cli/internal/config"
	"github.com/KaramelBytes/summarease-cli/internal/dataset"
	"github.com/KaramelBytes/summarease-cli/internal/summary"
	"github.com/KaramelBytes/summarease-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	tgtColumn     string
	tgtType       string
	tgtThreshold  float64
	tgtFormat     string
	tgtOutputPath string
	tgtPlotPath   string
	tgtVegaPath   string
	tgtDelimiter  string
	tgtDecimal    string
	tgtThousands  string
	tgtSheetName  string
	tgtSheetIndex int
	tgtMaxRows    int
)

var errChartNeedsCategorical = errors.New("charts are only available for categorical targets")

var targetCmd = &cobra.Command{
	Use:   "target <file>",
	Short: "Summarize the target column of a CSV/TSV/XLSX dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := settings()
		in := targetInput{
			column:     tgtColumn,
			kind:       pick(cmd, "type", tgtType, c.DefaultTargetType),
			format:     pick(cmd, "format", tgtFormat, c.OutputFormat),
			delimiter:  pick(cmd, "delimiter", tgtDelimiter, c.Delimiter),
			decimal:    tgtDecimal,
			thousands:  tgtThousands,
			sheetName:  tgtSheetName,
			sheetIndex: tgtSheetIndex,
			maxRows:    c.MaxRows,
		}
		if cmd.Flags().Changed("max-rows") {
			in.maxRows = tgtMaxRows
		}
		if cmd.Flags().Changed("threshold") {
			t := tgtThreshold
			in.threshold = &t
		}
		kind, err := summary.ParseTargetType(in.kind)
		if err != nil {
			return err
		}
		if kind != summary.Categorical && (tgtPlotPath != "" || tgtVegaPath != "") {
			return errChartNeedsCategorical
		}

		s, err := in.summarize(path, c)
		if err != nil {
			return err
		}
		out, err := renderSummary(s, in.format, tgtOutputPath == "" && c.ColorOutput)
		if err != nil {
			return err
		}
		if tgtOutputPath != "" {
			if err := utils.SafeWriteFile(tgtOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", tgtOutputPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
		}

		if tgtPlotPath == "" && tgtVegaPath == "" {
			return nil
		}
		ch, err := chart.PlotBalance(s.Frame, chartOptions(c, fmt.Sprintf("Class balance: %s", s.Target)))
		if err != nil {
			return err
		}
		if tgtPlotPath != "" {
			if err := writeHTML(ch, tgtPlotPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote chart to %s\n", tgtPlotPath)
		}
		if tgtVegaPath != "" {
			if err := writeVega(ch, tgtVegaPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote Vega-Lite spec to %s\n", tgtVegaPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetCmd)
	targetCmd.Flags().StringVarP(&tgtColumn, "column", "c", "", "target column to summarize (required)")
	targetCmd.Flags().StringVarP(&tgtType, "type", "t", "categorical", "target type: categorical|numerical")
	targetCmd.Flags().Float64Var(&tgtThreshold, "threshold", summary.DefaultThreshold, "imbalance threshold in [0, 1] (categorical only)")
	targetCmd.Flags().StringVar(&tgtFormat, "format", "table", "output format: table|markdown|json|yaml|csv")
	targetCmd.Flags().StringVarP(&tgtOutputPath, "output", "o", "", "optional path to write the summary")
	targetCmd.Flags().StringVar(&tgtPlotPath, "plot", "", "write a class-balance chart as HTML")
	targetCmd.Flags().StringVar(&tgtVegaPath, "vega", "", "write a class-balance chart as Vega-Lite JSON")
	targetCmd.Flags().StringVar(&tgtDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	targetCmd.Flags().StringVar(&tgtDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	targetCmd.Flags().StringVar(&tgtThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	targetCmd.Flags().StringVar(&tgtSheetName, "sheet-name", "", "XLSX: sheet name to read")
	targetCmd.Flags().IntVar(&tgtSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	targetCmd.Flags().IntVar(&tgtMaxRows, "max-rows", 0, "maximum rows to process (0 = unlimited)")
	_ = targetCmd.MarkFlagRequired("column")
}

// targetInput carries the resolved settings shared by target and target-batch.
type targetInput struct {
	column     string
	kind       string
	threshold  *float64
	format     string
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (in targetInput) summarize(path string, c *cfgpkg.Global) (*summary.Summary, error) {
	kind, err := summary.ParseTargetType(in.kind)
	if err != nil {
		return nil, err
	}
	opt := dataset.DefaultOptions()
	opt.MaxRows = in.maxRows
	opt.SheetName = in.sheetName
	if in.sheetIndex > 0 {
		opt.SheetIndex = in.sheetIndex
	}
	if opt.Delimiter, err = parseDelimiter(in.delimiter); err != nil {
		return nil, err
	}
	nf, err := parseNumberFormat(in.decimal, in.thousands)
	if err != nil {
		return nil, err
	}

	data, err := dataset.Load(path, opt)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded", "file", filepath.Base(path), "rows", data.Nrow(), "columns", data.Ncol())

	sopt := summary.Options{Numbers: nf, Logger: logger}
	switch {
	case in.threshold != nil:
		sopt.Threshold = in.threshold
	case kind == summary.Categorical:
		t := c.DefaultThreshold
		sopt.Threshold = &t
	}
	return summary.Summarize(data, in.column, kind, sopt)
}

// pick returns the flag value when the user set it, otherwise the configured fallback.
func pick(cmd *cobra.Command, name, flagVal, fallback string) string {
	if cmd.Flags().Changed(name) || fallback == "" {
		return flagVal
	}
	return fallback
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

func parseNumberFormat(decimal, thousands string) (dataset.NumberFormat, error) {
	var nf dataset.NumberFormat
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		nf.DecimalSeparator = ','
	case ".", "dot":
		nf.DecimalSeparator = '.'
	case "":
	default:
		return nf, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(strings.TrimSpace(thousands)) {
	case ",":
		nf.ThousandsSeparator = ','
	case ".":
		nf.ThousandsSeparator = '.'
	case "space", " ":
		nf.ThousandsSeparator = ' '
	case "":
	default:
		return nf, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thousands)
	}
	return nf, nil
}

// formatExt maps an output format to the file suffix used by target-batch.
var formatExt = map[string]string{
	"table":    ".txt",
	"markdown": ".md",
	"json":     ".json",
	"yaml":     ".yaml",
	"csv":      ".csv",
}

func renderSummary(s *summary.Summary, format string, colorize bool) ([]byte, error) {
	switch strings.ToLower(format) {
	case "table":
		return []byte(s.Table(colorize) + "\n"), nil
	case "markdown", "md":
		return []byte(s.Markdown()), nil
	case "json":
		return s.JSON()
	case "yaml", "yml":
		return s.YAML()
	case "csv":
		var buf bytes.Buffer
		if err := s.WriteCSV(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported --format: %s (use table|markdown|json|yaml|csv)", format)
	}
}

func chartOptions(c *cfgpkg.Global, title string) chart.Options {
	return chart.Options{
		Title:           title,
		Width:           c.ChartWidth,
		Height:          c.ChartHeight,
		BalancedColor:   c.BalancedColor,
		ImbalancedColor: c.ImbalancedColor,
		ThresholdColor:  c.ThresholdColor,
	}
}

func writeHTML(ch *chart.Chart, path string) error {
	var buf bytes.Buffer
	if err := ch.RenderHTML(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

func writeVega(ch *chart.Chart, path string) error {
	b, err := utils.PrettyJSON(ch.VegaLite())
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write vega-lite spec: %w", err)
	}
	return nil
}
