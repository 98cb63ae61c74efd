package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/riskloom-cli/internal/export"
	"github.com/KaramelBytes/riskloom-cli/internal/logging"
	"github.com/KaramelBytes/riskloom-cli/internal/parser"
	"github.com/KaramelBytes/riskloom-cli/internal/pipeline"
	"github.com/KaramelBytes/riskloom-cli/internal/store"
	"github.com/KaramelBytes/riskloom-cli/internal/table"
	"github.com/KaramelBytes/riskloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	scAttendance string
	scMarks      string
	scFees       string
	scSheetName  string
	scSheetIndex int
	scDelimiter  string
	scOutputPath string
	scFormat     string
	scMaxRows    int
	scTotalFee   float64
	scDB         bool
	scDBTag      string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score dropout risk from attendance, marks and fee tables",
	Long: `Score reads the three input tables (CSV/TSV, XLSX or JSON), detects the relevant
columns, reconciles percentages and remaining fees, and writes one row per student.

Output formats: csv (default), json ({"status":"success","result":[...]}) and markdown
(summary with per-tier counts, detected columns and notes).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		format := c.OutputFormat
		if cmd.Flags().Changed("format") {
			format = scFormat
		}
		format, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		rc := c.RiskConfig()
		if cmd.Flags().Changed("total-fee") {
			rc.TotalFee = scTotalFee
		}
		delim, err := parseDelimiter(scDelimiter)
		if err != nil {
			return err
		}
		logger := logging.FromContext(cmd.Context())

		fail := func(err error) error {
			if format == export.FormatJSON && errors.Is(err, table.ErrIngestion) {
				_ = export.WriteError(cmd.OutOrStdout(), err)
			}
			logging.LogError(logger, "score failed", err)
			return err
		}

		var in pipeline.Inputs
		sources := []struct {
			flag string
			path string
			dst  **table.Table
		}{
			{"attendance", scAttendance, &in.Attendance},
			{"marks", scMarks, &in.Marks},
			{"fees", scFees, &in.Fees},
		}
		for _, src := range sources {
			if src.path == "" {
				return fmt.Errorf("--%s is required", src.flag)
			}
		}
		opt := parser.Options{SheetName: scSheetName, SheetIndex: scSheetIndex, Delimiter: delim}
		for _, src := range sources {
			t, err := parser.ParseFile(src.path, opt)
			if err != nil {
				return fail(err)
			}
			*src.dst = t
		}

		res, err := pipeline.Run(in, pipeline.Options{Config: rc, Logger: logger})
		if err != nil {
			return fail(err)
		}

		var buf bytes.Buffer
		switch format {
		case export.FormatJSON:
			err = export.WriteJSON(&buf, res.Records)
		case export.FormatMarkdown:
			_, err = buf.WriteString(export.Markdown(res, scMaxRows))
		default:
			err = export.WriteCSV(&buf, res.Records)
		}
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}

		if scOutputPath != "" {
			if err := utils.EnsureParentDir(scOutputPath); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if err := utils.SafeWriteFile(scOutputPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d students to %s\n", len(res.Records), scOutputPath)
		} else if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		if scDB {
			sc := store.Config{URL: c.DBURL, Schema: c.DBSchema, Tag: scDBTag}
			if err := store.SaveRun(cmd.Context(), sc, res); err != nil {
				logging.LogError(logger, "save run failed", err, slog.String("run_id", res.RunID.String()))
				return fmt.Errorf("save run: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved run %s to schema %s\n", res.RunID, sc.Schema)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scAttendance, "attendance", "", "attendance table (csv|tsv|xlsx|json)")
	scoreCmd.Flags().StringVar(&scMarks, "marks", "", "marks table (csv|tsv|xlsx|json)")
	scoreCmd.Flags().StringVar(&scFees, "fees", "", "fee payments table (csv|tsv|xlsx|json)")
	scoreCmd.Flags().StringVar(&scSheetName, "sheet-name", "", "XLSX: sheet name to read in every workbook")
	scoreCmd.Flags().IntVar(&scSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (default 1)")
	scoreCmd.Flags().StringVar(&scDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default auto)")
	scoreCmd.Flags().StringVarP(&scOutputPath, "output", "o", "", "write output to file instead of stdout")
	scoreCmd.Flags().StringVar(&scFormat, "format", "csv", "output format: csv|json|markdown (default from config)")
	scoreCmd.Flags().IntVar(&scMaxRows, "max-rows", 0, "markdown: limit the student table to N rows (0 = all)")
	scoreCmd.Flags().Float64Var(&scTotalFee, "total-fee", 0, "full fee owed per student (overrides config)")
	scoreCmd.Flags().BoolVar(&scDB, "db", false, "also persist the run to Postgres (db_url / RISKLOOM_DB_URL)")
	scoreCmd.Flags().StringVar(&scDBTag, "db-tag", "", "free-form tag stored with the run")
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
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}
