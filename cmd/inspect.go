package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/riskloom-cli/internal/analysis"
	"github.com/KaramelBytes/riskloom-cli/internal/parser"
	"github.com/KaramelBytes/riskloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	inSheetName  string
	inSheetIndex int
	inDelimiter  string
	inSampleRows int
	inOutlierThr float64
	inOutputPath string
	inQuiet      bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <files...>",
	Short: "Profile tables and show which columns the scorer would pick",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
			return fmt.Errorf("no input files matched")
		}
		sort.Strings(files)

		delim, err := parseDelimiter(inDelimiter)
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = inSampleRows
		}
		if inOutlierThr > 0 {
			opt.OutlierThreshold = inOutlierThr
		}
		popt := parser.Options{SheetName: inSheetName, SheetIndex: inSheetIndex, Delimiter: delim}

		var reports []string
		total := len(files)
		for i, path := range files {
			if !parser.Supported(path) {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: skipping %s (unsupported format)\n", path)
				continue
			}
			if !inQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Inspecting %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := parser.ParseFile(path, popt)
			if err != nil {
				return err
			}
			reports = append(reports, analysis.Profile(t, opt).Markdown())
		}
		if len(reports) == 0 {
			return fmt.Errorf("no supported input files (csv|tsv|xlsx|json)")
		}
		out := strings.Join(reports, "\n")

		if inOutputPath != "" {
			if err := utils.EnsureParentDir(inOutputPath); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if err := utils.SafeWriteFile(inOutputPath, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d profiles to %s\n", len(reports), inOutputPath)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inSheetName, "sheet-name", "", "XLSX: sheet name to inspect")
	inspectCmd.Flags().IntVar(&inSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (default 1)")
	inspectCmd.Flags().StringVar(&inDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default auto)")
	inspectCmd.Flags().IntVar(&inSampleRows, "sample-rows", 5, "number of sample rows to include")
	inspectCmd.Flags().Float64Var(&inOutlierThr, "outlier-threshold", 0, "robust z threshold for numeric outliers (default 3.5)")
	inspectCmd.Flags().StringVarP(&inOutputPath, "output", "o", "", "write the combined profile to file")
	inspectCmd.Flags().BoolVar(&inQuiet, "quiet", false, "suppress progress output")
}
