package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var preflightCommand = &cobra.Command{
	Use:   "preflight",
	Short: "Check whether the loopback LLM runtime is reachable and the model is loaded",
	RunE:  preflightMain,
}

func preflightMain(cmd *cobra.Command, args []string) error {
	a, err := openApp(rootConfiguration.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	pf := a.orchestrator.Preflight(context.Background())

	status := color.GreenString("ready")
	switch {
	case !pf.LLMReachable:
		status = color.RedString("unreachable")
	case !pf.ModelLoaded:
		status = color.YellowString("model not loaded")
	}

	fmt.Printf("llm: %s\n", status)
	fmt.Printf("model: %s\n", pf.ModelName)
	return nil
}
