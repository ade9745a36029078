package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/colstats/internal/config"
	"github.com/KaramelBytes/colstats/internal/logger"
	"github.com/KaramelBytes/colstats/internal/report"
	"github.com/KaramelBytes/colstats/internal/utils"
)

var cfgShowJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set colstats configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		if cfgShowJSON {
			b, err := utils.PrettyJSON(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "round_places: %d\n", cfg.RoundPlaces)
		fmt.Fprintf(out, "jobs: %d\n", cfg.Jobs)
		fmt.Fprintf(out, "dates_whitelist: %s\n", cfg.DatesWhitelist)
		fmt.Fprintf(out, "infer_dates: %t\n", cfg.InferDates)
		fmt.Fprintf(out, "prefer_dmy: %t\n", cfg.PreferDMY)
		fmt.Fprintf(out, "include_nulls: %t\n", cfg.IncludeNulls)
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_encoding: %s\n", cfg.LogEncoding)
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
		case "round_places":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for round_places: %v", val)
			}
			cfg.RoundPlaces = i
		case "jobs":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for jobs: %v", val)
			}
			cfg.Jobs = i
		case "dates_whitelist":
			cfg.DatesWhitelist = val
		case "infer_dates", "prefer_dmy", "include_nulls":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for %s: %w", key, err)
			}
			switch key {
			case "infer_dates":
				cfg.InferDates = b
			case "prefer_dmy":
				cfg.PreferDMY = b
			default:
				cfg.IncludeNulls = b
			}
		case "output_format":
			f, err := report.ParseFormat(val)
			if err != nil {
				return err
			}
			cfg.OutputFormat = string(f)
		case "log_level", "log_encoding":
			lc := logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding}
			if key == "log_level" {
				lc.Level = strings.ToLower(val)
			} else {
				lc.Encoding = strings.ToLower(val)
			}
			if _, err := logger.New(lc); err != nil {
				return err
			}
			cfg.LogLevel, cfg.LogEncoding = lc.Level, lc.Encoding
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
	configShowCmd.Flags().BoolVar(&cfgShowJSON, "json", false, "print configuration as JSON")
}
