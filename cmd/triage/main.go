// Command triage is the CLI front end for the file-triage engine. It
// wires the catalog, safety engine, orchestrator, execution engine, and
// undo manager together behind a small set of cobra subcommands: one file
// per subcommand, a package-level `*Command` var plus an `init()` that
// wires its flags.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/localdrive/triage/internal/config"
	"github.com/localdrive/triage/internal/utils"
)

var rootCommand = &cobra.Command{
	Use:          "triage",
	Short:        "Privacy-preserving, offline file-triage engine",
	SilenceUsage: true,
}

var rootConfiguration struct {
	configPath string
}

func init() {
	// Default to a config.yaml next to the running executable, not the
	// working directory — this tool is commonly launched unattended (Task
	// Scheduler), which can start it from an arbitrary cwd like
	// C:\Windows\System32.
	root, err := utils.ExeDir()
	if err != nil {
		root, _ = os.Getwd()
	}
	defaultConfigPath := filepath.Join(root, "config.yaml")

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&rootConfiguration.configPath, "config", defaultConfigPath, "path to the engine's YAML configuration file")

	rootCommand.AddCommand(
		preflightCommand,
		classifyCommand,
		planCommand,
		executeCommand,
		undoCommand,
		statsCommand,
	)
}

func main() {
	// Disable ANSI colors when stdout isn't a terminal (redirected to a
	// file, piped into another tool, or run under Task Scheduler).
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		// A configuration rejection (non-loopback LLM host, bad thresholds)
		// can otherwise go unnoticed on an unattended run — pop a native
		// message box on Windows hosts.
		var rejection *config.ErrConfigurationRejection
		if errors.As(err, &rejection) {
			utils.ShowPopup("Triage configuration rejected", err.Error())
		}
		os.Exit(1)
	}
}
