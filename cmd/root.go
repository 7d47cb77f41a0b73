package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tspec/formatter"
	"github.com/gnolang/tspec/specgen"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile  string
	timeout  time.Duration
	verbose  bool
	noColor  bool
	cacheDir string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:              "tspec [paths...]",
	Short:            "tspec - generate separation-logic specs from typed TypeScript ASTs",
	SilenceUsage:     true,
	Args:             cobra.ArbitraryArgs,
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: tspec [path1 path2 ...] => behaves like the gen subcommand
		return run(cmd, args, emitSpecs)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", specgen.DefaultConfigPath, "Path to the configuration file")
	flags.DurationVar(&timeout, "timeout", defaultTimeout, "Time limit for the whole run")
	flags.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&cacheDir, "cache-dir", "", "Cache generated output in this directory")
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.StringVarP(&outPath, "output", "o", "", "Write output to this file instead of stdout")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(predsCmd)
	rootCmd.AddCommand(classesCmd)
}

func setup() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	if noColor {
		formatter.SetColor(false)
	}
	return nil
}

func newEngine() (*specgen.Engine, error) {
	opts := []specgen.Option{specgen.WithLogger(logger)}
	if cacheDir != "" {
		opts = append(opts, specgen.WithCache(cacheDir))
	}
	engine, err := specgen.New(cfgFile, opts...)
	if err != nil {
		logger.Error("Failed to initialize spec engine", zap.String("config", cfgFile), zap.Error(err))
		return nil, err
	}
	return engine, nil
}
