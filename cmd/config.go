package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/summarease-cli/internal/config"
	"github.com/KaramelBytes/summarease-cli/internal/summary"
	"github.com/spf13/cobra"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Summarease configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "default_threshold: %.3f\n", cfg.DefaultThreshold)
		fmt.Fprintf(out, "default_target_type: %s\n", cfg.DefaultTargetType)
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.MaxRows > 0 {
			fmt.Fprintf(out, "max_rows: %d\n", cfg.MaxRows)
		}
		fmt.Fprintf(out, "color_output: %t\n", cfg.ColorOutput)
		fmt.Fprintf(out, "chart_width: %d\n", cfg.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", cfg.ChartHeight)
		fmt.Fprintf(out, "balanced_color: %s\n", cfg.BalancedColor)
		fmt.Fprintf(out, "imbalanced_color: %s\n", cfg.ImbalancedColor)
		fmt.Fprintf(out, "threshold_color: %s\n", cfg.ThresholdColor)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "default_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 || f > 1 {
				return fmt.Errorf("invalid float for default_threshold: %v (must be in [0, 1])", val)
			}
			cfg.DefaultThreshold = f
		case "default_target_type":
			kind, err := summary.ParseTargetType(val)
			if err != nil {
				return err
			}
			cfg.DefaultTargetType = string(kind)
		case "output_format":
			v := strings.ToLower(val)
			if _, ok := formatExt[v]; !ok {
				return fmt.Errorf("invalid output_format: %s (use table|markdown|json|yaml|csv)", val)
			}
			cfg.OutputFormat = v
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			cfg.Delimiter = val
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_rows: %v", val)
			}
			cfg.MaxRows = i
		case "color_output":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for color_output: %w", err)
			}
			cfg.ColorOutput = b
		case "chart_width", "chart_height":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			if key == "chart_width" {
				cfg.ChartWidth = i
			} else {
				cfg.ChartHeight = i
			}
		case "balanced_color", "imbalanced_color", "threshold_color":
			if !hexColor.MatchString(val) {
				return fmt.Errorf("invalid color for %s: %s (use #RGB or #RRGGBB)", key, val)
			}
			switch key {
			case "balanced_color":
				cfg.BalancedColor = val
			case "imbalanced_color":
				cfg.ImbalancedColor = val
			default:
				cfg.ThresholdColor = val
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
