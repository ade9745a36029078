package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/colstats/internal/csvio"
)

var (
	idxDelimiter string
)

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Build a row index so stats can run in parallel",
	Long: `Writes <file>.idx holding the byte offset of every record. "colstats stats"
uses the index to split the file into one chunk per job. Rebuild it whenever
the file changes; a stale index is ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if path == "-" {
			return fmt.Errorf("cannot index stdin")
		}
		delim, err := csvio.ParseDelimiter(idxDelimiter)
		if err != nil {
			return err
		}
		start := time.Now()
		n, err := csvio.BuildIndex(csvio.Config{Path: path, Delimiter: delim})
		if err != nil {
			return err
		}
		log.Info("index built", zap.String("path", csvio.IndexPath(path)), zap.Uint64("rows", n), zap.Duration("elapsed", time.Since(start)))
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Indexed %d rows into %s\n", n, csvio.IndexPath(path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVarP(&idxDelimiter, "delimiter", "d", "", "field delimiter: one character or 'tab' (default from extension)")
}
