package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/summarease-cli/internal/chart"
	"github.com/KaramelBytes/summarease-cli/internal/dataset"
	"github.com/KaramelBytes/summarease-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	plotOutputPath string
	plotVegaPath   string
	plotTitle      string
	plotSheetName  string
	plotSheetIndex int
)

var plotCmd = &cobra.Command{
	Use:   "plot <summary.csv|summary.xlsx>",
	Short: "Render a class-balance chart from a saved categorical summary table",
	Long: `Render a class-balance chart from a table with class, proportion, imbalanced
and threshold columns, such as the CSV written by "target --format csv".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt := dataset.DefaultOptions()
		opt.SheetName = plotSheetName
		if plotSheetIndex > 0 {
			opt.SheetIndex = plotSheetIndex
		}
		table, err := dataset.Load(path, opt)
		if err != nil {
			return err
		}

		title := plotTitle
		if title == "" {
			title = fmt.Sprintf("Class balance: %s", utils.BaseName(path))
		}
		ch, err := chart.PlotBalance(table, chartOptions(settings(), title))
		if err != nil {
			return err
		}
		logger.Debug("chart described", "layers", len(ch.Layers), "layered", ch.Layered())

		htmlPath := plotOutputPath
		if htmlPath == "" && plotVegaPath == "" {
			htmlPath = filepath.Join(filepath.Dir(path), utils.BaseName(path)+".balance.html")
		}
		if htmlPath != "" {
			if err := writeHTML(ch, htmlPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote chart to %s\n", htmlPath)
		}
		if plotVegaPath != "" {
			if err := writeVega(ch, plotVegaPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote Vega-Lite spec to %s\n", plotVegaPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVarP(&plotOutputPath, "output", "o", "", "HTML chart path (default: <input>.balance.html next to the input)")
	plotCmd.Flags().StringVar(&plotVegaPath, "vega", "", "write the chart as Vega-Lite JSON")
	plotCmd.Flags().StringVar(&plotTitle, "title", "", "chart title")
	plotCmd.Flags().StringVar(&plotSheetName, "sheet-name", "", "XLSX: sheet name to read")
	plotCmd.Flags().IntVar(&plotSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
