package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/render"
	"github.com/ppiankov/veritas/internal/session"
	"github.com/ppiankov/veritas/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchMode        string
	batchConcurrency int
	batchTimeout     time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check many claims from a file in parallel",
	Long: `Batch reads one claim per line (blank lines and lines starting with #
are skipped, duplicates are checked once) and runs the checks concurrently.
Every success is added to history. Results are printed in input order.

Example:
  veritas batch claims.txt
  veritas batch clauses.txt --mode legal --concurrency 2`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchMode, "mode", "fact", "check mode (fact, legal)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	mode, err := model.ParseMode(batchMode)
	if err != nil {
		return err
	}

	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer closePipeline(p, &err)

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	results, err := p.Batch(batchConcurrency).ProcessFile(ctx, args[0], mode)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	if jsonOut {
		return render.JSON(cmd.OutOrStdout(), batchReport(results))
	}
	fmt.Fprintln(cmd.OutOrStdout(), newRenderer(p).Batch(results))
	return nil
}

type batchItem struct {
	Index   int           `json:"index"`
	Claim   string        `json:"claim"`
	Result  *model.Result `json:"result,omitempty"`
	EntryID string        `json:"entryId,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func batchReport(results []*worker.CheckResult) []batchItem {
	items := make([]batchItem, 0, len(results))
	for _, r := range results {
		item := batchItem{Index: r.Index, Claim: r.Claim, Result: r.Result, EntryID: r.EntryID}
		if r.Error != nil {
			item.Error = session.FailureMessage(r.Error)
		}
		items = append(items, item)
	}
	return items
}
