package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/offlingo/offlingo/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "offlingo [text]",
		Short: "Offline neural machine translation",
		Long: `offlingo translates text between 200+ languages without any network
access. It runs a local encoder-decoder model and keeps everything on
your machine.

Examples:
  offlingo -s en -t fr "good morning"     # Translate a phrase via CLI
  offlingo --batch texts.txt -s en -t de  # Translate a file, one text per line
  offlingo --history 10                   # Show the last 10 translations`,
		Args:    cobra.ArbitraryArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	home, _ := os.UserHomeDir()
	defaultModelDir := filepath.Join(home, ".local", "share", "offlingo", "models", "nllb-200-distilled-600M")
	defaultHistoryFile := filepath.Join(home, ".local", "state", "offlingo", "history.db")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.offlingo.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.ModelDir, "model", "m", defaultModelDir, "Model directory holding the network and vocabulary files")
	cmd.Flags().StringVarP(&flags.SourceLang, "source", "s", flags.SourceLang, "Source language (short code like 'en' or canonical like 'eng_Latn')")
	cmd.Flags().StringVarP(&flags.TargetLang, "target", "t", flags.TargetLang, "Target language (short code like 'fr' or canonical like 'fra_Latn')")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Translate texts from file (one per line, '#' comments skipped)")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write translations to file instead of stdout")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List complete model directories under the model root")
	cmd.Flags().StringVar(&flags.ModelRoot, "model-root", filepath.Dir(defaultModelDir), "Root directory scanned by --list-models")
	cmd.Flags().BoolVar(&flags.ListLangs, "list-languages", false, "List supported language codes")
	cmd.Flags().StringVar(&flags.HistoryFile, "history-file", defaultHistoryFile, "Path of the sqlite translation history")
	cmd.Flags().BoolVar(&flags.NoHistory, "no-history", false, "Do not record translations in the history")
	cmd.Flags().IntVar(&flags.ShowHistory, "history", 0, "Show the N most recent translations and exit")
	cmd.Flags().BoolVar(&flags.ArchiveHistory, "archive-history", false, "Move the history database into a timestamped archive and exit")
	cmd.Flags().IntVar(&flags.CacheSize, "cache-size", flags.CacheSize, "Number of translations kept in the in-memory cache")
	cmd.Flags().IntVar(&flags.MaxSteps, "max-steps", flags.MaxSteps, "Maximum number of decode steps per translation")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("model.dir", cmd.Flags().Lookup("model"))
	viper.BindPFlag("model.root", cmd.Flags().Lookup("model-root"))
	viper.BindPFlag("translation.source", cmd.Flags().Lookup("source"))
	viper.BindPFlag("translation.target", cmd.Flags().Lookup("target"))
	viper.BindPFlag("translation.cache_size", cmd.Flags().Lookup("cache-size"))
	viper.BindPFlag("engine.max_steps", cmd.Flags().Lookup("max-steps"))
	viper.BindPFlag("history.file", cmd.Flags().Lookup("history-file"))
	viper.BindPFlag("history.disabled", cmd.Flags().Lookup("no-history"))
	viper.BindPFlag("output.file", cmd.Flags().Lookup("output"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".offlingo" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".offlingo")
	}

	// Environment variables
	viper.SetEnvPrefix("OFFLINGO")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
