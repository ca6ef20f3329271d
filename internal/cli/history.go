package cli

import (
	"fmt"

	"github.com/ppiankov/veritas/internal/render"
	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd manages the local query history
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, replay or clear past checks",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past checks, newest first",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		p, err := openPipeline()
		if err != nil {
			return err
		}
		defer closePipeline(p, &err)

		entries := p.History.Entries()
		if historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[:historyLimit]
		}

		if jsonOut {
			return render.JSON(cmd.OutOrStdout(), entries)
		}
		fmt.Fprintln(cmd.OutOrStdout(), newRenderer(p).History(entries))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored result without contacting the provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		p, err := openPipeline()
		if err != nil {
			return err
		}
		defer closePipeline(p, &err)

		st, err := p.Session.Select(args[0])
		if err != nil {
			return fmt.Errorf("history entry %s: %w", args[0], err)
		}
		if jsonOut {
			return render.JSON(cmd.OutOrStdout(), st)
		}

		entry, _ := p.History.Get(st.EntryID)
		fmt.Fprintln(cmd.OutOrStdout(), newRenderer(p).Entry(entry))
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored entry",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		p, err := openPipeline()
		if err != nil {
			return err
		}
		defer closePipeline(p, &err)

		n := p.History.Len()
		if err := p.History.Clear(); err != nil {
			return err
		}
		cmd.Printf("✓ Cleared %d entries\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most n entries")
}
