package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var executeConfiguration struct {
	dryRun bool
}

var executeCommand = &cobra.Command{
	Use:   "execute",
	Short: "Execute the approved-action plan: move, soft-delete, archive, or redirect",
	RunE:  executeMain,
}

func init() {
	flags := executeCommand.Flags()
	flags.BoolVar(&executeConfiguration.dryRun, "dry-run", false, "count what would happen without mutating the filesystem")
}

func executeMain(cmd *cobra.Command, args []string) error {
	a, err := openApp(rootConfiguration.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.execution.ExecutePlan(executeConfiguration.dryRun)
	if err != nil {
		return err
	}

	if summary.BatchID == "" {
		fmt.Println("nothing to execute — approved plan is empty")
		return nil
	}

	fmt.Printf("batch:     %s\n", summary.BatchID)
	fmt.Printf("moved:     %d\n", summary.Moved)
	fmt.Printf("deleted:   %d\n", summary.Deleted)
	fmt.Printf("archived:  %d\n", summary.Archived)
	fmt.Printf("symlinked: %d\n", summary.Symlinked)
	fmt.Printf("skipped:   %d\n", summary.Skipped)
	fmt.Printf("errors:    %d\n", summary.Errors)
	return nil
}
