package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/summarease-cli/internal/chart"
	"github.com/KaramelBytes/summarease-cli/internal/summary"
	"github.com/KaramelBytes/summarease-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	tbColumn     string
	tbType       string
	tbThreshold  float64
	tbFormat     string
	tbOutDir     string
	tbPlots      bool
	tbDelimiter  string
	tbDecimal    string
	tbThousands  string
	tbSheetName  string
	tbSheetIndex int
	tbMaxRows    int
	tbQuiet      bool
)

var targetBatchCmd = &cobra.Command{
	Use:   "target-batch <files...>",
	Short: "Summarize the same target column across many files with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}

		c := settings()
		in := targetInput{
			column:     tbColumn,
			kind:       pick(cmd, "type", tbType, c.DefaultTargetType),
			format:     strings.ToLower(tbFormat),
			delimiter:  pick(cmd, "delimiter", tbDelimiter, c.Delimiter),
			decimal:    tbDecimal,
			thousands:  tbThousands,
			sheetName:  tbSheetName,
			sheetIndex: tbSheetIndex,
			maxRows:    c.MaxRows,
		}
		if cmd.Flags().Changed("max-rows") {
			in.maxRows = tbMaxRows
		}
		if cmd.Flags().Changed("threshold") {
			t := tbThreshold
			in.threshold = &t
		}
		kind, err := summary.ParseTargetType(in.kind)
		if err != nil {
			return err
		}
		ext, ok := formatExt[in.format]
		if !ok {
			return fmt.Errorf("unsupported --format: %s (use table|markdown|json|yaml|csv)", in.format)
		}
		outDir := tbOutDir
		if outDir == "" {
			outDir = "."
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		out := cmd.OutOrStdout()
		plots := tbPlots
		if plots && kind != summary.Categorical {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v; skipping --plots\n", errChartNeedsCategorical)
			plots = false
		}

		total := len(files)
		for i, path := range files {
			if !tbQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			s, err := in.summarize(path, c)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			body, err := renderSummary(s, in.format, false)
			if err != nil {
				return err
			}

			base := sheetBase(utils.BaseName(path), tbSheetName)
			outFile := utils.UniquePath(outDir, base, ".summary"+ext)
			if !tbQuiet && filepath.Base(outFile) != base+".summary"+ext {
				fmt.Fprintf(out, "⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
			}
			if err := utils.SafeWriteFile(outFile, body); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !tbQuiet {
				fmt.Fprintf(out, "✓ Wrote summary to %s\n", outFile)
			}

			if !plots {
				continue
			}
			ch, err := chart.PlotBalance(s.Frame, chartOptions(c, fmt.Sprintf("Class balance: %s (%s)", s.Target, filepath.Base(path))))
			if err != nil {
				return err
			}
			chartFile := strings.TrimSuffix(outFile, ".summary"+ext) + ".balance.html"
			if err := writeHTML(ch, chartFile); err != nil {
				return err
			}
			if !tbQuiet {
				fmt.Fprintf(out, "✓ Wrote chart to %s\n", chartFile)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetBatchCmd)
	targetBatchCmd.Flags().StringVarP(&tbColumn, "column", "c", "", "target column to summarize in every file (required)")
	targetBatchCmd.Flags().StringVarP(&tbType, "type", "t", "categorical", "target type: categorical|numerical")
	targetBatchCmd.Flags().Float64Var(&tbThreshold, "threshold", summary.DefaultThreshold, "imbalance threshold in [0, 1] (categorical only)")
	targetBatchCmd.Flags().StringVar(&tbFormat, "format", "json", "summary file format: table|markdown|json|yaml|csv")
	targetBatchCmd.Flags().StringVar(&tbOutDir, "out-dir", "", "directory for summary files (default: current directory)")
	targetBatchCmd.Flags().BoolVar(&tbPlots, "plots", false, "also write a class-balance HTML chart per file")
	targetBatchCmd.Flags().StringVar(&tbDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	targetBatchCmd.Flags().StringVar(&tbDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	targetBatchCmd.Flags().StringVar(&tbThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	targetBatchCmd.Flags().StringVar(&tbSheetName, "sheet-name", "", "XLSX: sheet name to read")
	targetBatchCmd.Flags().IntVar(&tbSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	targetBatchCmd.Flags().IntVar(&tbMaxRows, "max-rows", 0, "maximum rows to process per file (0 = unlimited)")
	targetBatchCmd.Flags().BoolVar(&tbQuiet, "quiet", false, "suppress progress and non-essential output")
	_ = targetBatchCmd.MarkFlagRequired("column")
}

// expandInputs resolves globs and literal paths into a sorted, de-duplicated file list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// sheetBase appends a slug of the selected sheet so summaries of different
// sheets of one workbook do not collide.
func sheetBase(base, sheet string) string {
	if sheet == "" {
		return base
	}
	s := strings.ToLower(strings.TrimSpace(sheet))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' {
			b.WriteRune('-')
		}
	}
	ss := strings.Trim(b.String(), "-")
	if ss == "" {
		ss = "sheet"
	}
	return base + "__sheet-" + ss
}
