package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var undoConfiguration struct {
	dryRun bool
}

var undoCommand = &cobra.Command{
	Use:   "undo [batch-id]",
	Short: "Reverse a prior execution batch, newest entry first. Omit batch-id to list undoable batches",
	Args:  cobra.MaximumNArgs(1),
	RunE:  undoMain,
}

func init() {
	flags := undoCommand.Flags()
	flags.BoolVar(&undoConfiguration.dryRun, "dry-run", false, "count what would be reversed without mutating the filesystem")
}

func undoMain(cmd *cobra.Command, args []string) error {
	a, err := openApp(rootConfiguration.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		batches, err := a.undo.ListBatches()
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			fmt.Println("no undoable batches")
			return nil
		}
		for _, b := range batches {
			fmt.Printf("%s  entries=%-4d  %s .. %s\n", b.BatchID, b.EntryCount,
				b.EarliestAt.Format("2006-01-02 15:04:05"), b.LatestAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	}

	summary, err := a.undo.UndoBatch(args[0], undoConfiguration.dryRun)
	if err != nil {
		return err
	}

	fmt.Printf("undone:  %d\n", summary.Undone)
	fmt.Printf("skipped: %d\n", summary.Skipped)
	fmt.Printf("failed:  %d\n", summary.Failed)
	return nil
}
