package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/riskloom-cli/internal/config"
	"github.com/KaramelBytes/riskloom-cli/internal/export"
	"github.com/KaramelBytes/riskloom-cli/internal/store"
	"github.com/KaramelBytes/riskloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var cfgShowJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set RiskLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *currentConfig()
		c.DBURL = mask(c.DBURL)
		out := cmd.OutOrStdout()
		if cfgShowJSON {
			b, err := utils.PrettyJSON(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "attendance_low: %g\n", c.AttendanceLow)
		fmt.Fprintf(out, "attendance_mid: %g\n", c.AttendanceMid)
		fmt.Fprintf(out, "marks_low: %g\n", c.MarksLow)
		fmt.Fprintf(out, "marks_mid: %g\n", c.MarksMid)
		fmt.Fprintf(out, "fee_red_ratio: %g\n", c.FeeRedRatio)
		fmt.Fprintf(out, "fee_orange_ratio: %g\n", c.FeeOrangeRatio)
		fmt.Fprintf(out, "weight_attendance: %g\n", c.WeightAttendance)
		fmt.Fprintf(out, "weight_marks: %g\n", c.WeightMarks)
		fmt.Fprintf(out, "weight_fee: %g\n", c.WeightFee)
		fmt.Fprintf(out, "neutral_prior: %g\n", c.NeutralPrior)
		fmt.Fprintf(out, "total_fee: %g\n", c.TotalFee)
		fmt.Fprintf(out, "output_format: %s\n", c.OutputFormat)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		if c.DBURL != "" {
			fmt.Fprintf(out, "db_url: %s\n", c.DBURL)
		}
		fmt.Fprintf(out, "db_schema: %s\n", c.DBSchema)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := currentConfig()
		floats := map[string]*float64{
			"attendance_low":    &c.AttendanceLow,
			"attendance_mid":    &c.AttendanceMid,
			"marks_low":         &c.MarksLow,
			"marks_mid":         &c.MarksMid,
			"fee_red_ratio":     &c.FeeRedRatio,
			"fee_orange_ratio":  &c.FeeOrangeRatio,
			"weight_attendance": &c.WeightAttendance,
			"weight_marks":      &c.WeightMarks,
			"weight_fee":        &c.WeightFee,
			"neutral_prior":     &c.NeutralPrior,
			"total_fee":         &c.TotalFee,
		}
		if dst, ok := floats[key]; ok {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			old := *dst
			*dst = f
			if err := c.RiskConfig().Validate(); err != nil {
				*dst = old
				return fmt.Errorf("invalid %s: %w", key, err)
			}
		} else {
			switch key {
			case "output_format":
				f, err := export.ParseFormat(val)
				if err != nil {
					return err
				}
				c.OutputFormat = f
			case "log_level":
				switch val {
				case "debug", "info", "warn", "error":
					c.LogLevel = val
				default:
					return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
				}
			case "log_format":
				switch val {
				case "text", "json":
					c.LogFormat = val
				default:
					return fmt.Errorf("invalid log_format: %s (use text|json)", val)
				}
			case "db_url":
				c.DBURL = val
			case "db_schema":
				s, err := store.SanitizeSchema(val)
				if err != nil {
					return err
				}
				c.DBSchema = s
			default:
				return fmt.Errorf("unknown key: %s", key)
			}
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
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
	configShowCmd.Flags().BoolVar(&cfgShowJSON, "json", false, "print as JSON")
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
