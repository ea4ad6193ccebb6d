package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localdrive/triage/internal/catalog"
)

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Show the dashboard-style aggregate view over the Catalog",
	RunE:  statsMain,
}

func statsMain(cmd *cobra.Command, args []string) error {
	a, err := openApp(rootConfiguration.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.catalog.Stats()
	if err != nil {
		return err
	}

	fmt.Println("by action:")
	for action, n := range s.ByAction {
		fmt.Printf("  %-14s %d\n", action, n)
	}
	fmt.Printf("reviewed:        %d\n", s.ReviewedCount)
	fmt.Printf("pending:         %d\n", s.PendingCount)
	fmt.Printf("pending review:  %d\n", s.PendingReviewCount)
	fmt.Printf("reclaimable:     %s\n", catalog.HumanizeBytes(s.ReclaimableBytes))

	fmt.Println("\ntop largest:")
	for _, f := range s.TopLargest {
		fmt.Printf("  %-10s %s\n", catalog.HumanizeBytes(f.SizeBytes), f.Path)
	}
	return nil
}
