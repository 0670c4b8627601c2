package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/offlingo/offlingo/internal/archive"
	"github.com/offlingo/offlingo/internal/cli"
	"github.com/offlingo/offlingo/internal/infer"
	"github.com/offlingo/offlingo/internal/lang"
	"github.com/offlingo/offlingo/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	// Listing and history commands never touch the model, so they need
	// no inference runtime.
	if flags.ListLangs {
		return processor.NewProcessor(flags, nil).ListLanguages()
	}
	if flags.ListModels {
		return processor.NewProcessor(flags, nil).ListModels()
	}
	if flags.ShowHistory > 0 {
		return processor.NewProcessor(flags, nil).ShowHistory(flags.ShowHistory)
	}

	// Handle --archive-history flag
	if flags.ArchiveHistory {
		historyFile := flags.HistoryFile
		if viper.IsSet("history.file") {
			historyFile = viper.GetString("history.file")
		}
		if err := archive.ArchiveHistory(historyFile); err != nil {
			return fmt.Errorf("failed to archive history: %w", err)
		}
		return nil
	}

	if flags.BatchFile == "" && len(args) == 0 {
		return cmd.Help()
	}

	// Reject bad language codes before the model is loaded.
	for _, code := range []string{flags.SourceLang, flags.TargetLang} {
		if !lang.Supported(code) {
			return fmt.Errorf("unsupported language %q, see --list-languages", code)
		}
	}

	rt, err := infer.NewDefaultRuntime()
	if err != nil {
		return err
	}

	// Create processor
	proc := processor.NewProcessor(flags, rt)
	defer proc.Close()

	// Handle --output flag
	outputFile := flags.OutputFile
	if viper.IsSet("output.file") {
		outputFile = viper.GetString("output.file")
	}
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		proc.SetOutput(f)
	}

	// Handle batch processing
	if flags.BatchFile != "" {
		return proc.ProcessBatch()
	}

	// Process the command-line text
	return proc.ProcessSingleText(strings.Join(args, " "))
}
