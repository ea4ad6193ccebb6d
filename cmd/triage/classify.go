package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var classifyCommand = &cobra.Command{
	Use:   "classify",
	Short: "Classify every file without a prior Classification, in fixed-size batches",
	RunE:  classifyMain,
}

func classifyMain(cmd *cobra.Command, args []string) error {
	a, err := openApp(rootConfiguration.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	summary := a.orchestrator.ClassifyAll(context.Background())

	fmt.Printf("classified: %d\n", summary.Classified)
	fmt.Printf("overridden: %d\n", summary.Overridden)
	fmt.Printf("errors:     %d\n", summary.Errors)
	fmt.Printf("batches:    %d\n", summary.Batches)
	if summary.Aborted {
		fmt.Println(color.YellowString("aborted — 3 consecutive batch failures"))
	}
	return nil
}
