package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localdrive/triage/internal/catalog"
)

var planCommand = &cobra.Command{
	Use:   "plan",
	Short: "Preview the approved-action plan without mutating the filesystem",
	RunE:  planMain,
}

func planMain(cmd *cobra.Command, args []string) error {
	a, err := openApp(rootConfiguration.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.catalog.ApprovedPlan()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("approved plan is empty")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%-14s %s (%s)\n", e.Action, e.Path, catalog.HumanizeBytes(e.SizeBytes))
	}
	fmt.Printf("\n%d entries\n", len(entries))
	return nil
}
