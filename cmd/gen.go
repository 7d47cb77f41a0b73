package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tspec/formatter"
	"github.com/gnolang/tspec/specgen"
)

var (
	jsonOutput bool
	outPath    string
	watch      bool
)

var errNoPaths = errors.New("please provide file or directory paths")

var genCmd = &cobra.Command{
	Use:   "gen [paths...]",
	Short: "Generate function specs and predicates",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := run(cmd, args, emitSpecs); err != nil {
			return err
		}
		if !watch {
			return nil
		}
		return watchPaths(cmd, args)
	},
}

func init() {
	genCmd.Flags().BoolVar(&watch, "watch", false, "Regenerate specs whenever an input file changes")
}

// watchPaths regenerates changed files until interrupted.
func watchPaths(cmd *cobra.Command, paths []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := newEngine()
	if err != nil {
		return err
	}
	w, err := specgen.NewWatcher(engine, logger, paths...)
	if err != nil {
		return err
	}
	logger.Info("Watching for changes", zap.Strings("paths", paths))
	err = w.Watch(ctx, func(out specgen.Output) {
		werr := writeOutput(cmd.OutOrStdout(), outPath, func(w io.Writer) error {
			return emitSpecs(w, []specgen.Output{out})
		})
		if werr != nil {
			logger.Error("Error writing output", zap.Error(werr))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func emitSpecs(w io.Writer, outs []specgen.Output) error {
	if jsonOutput {
		return formatter.WriteJSON(w, outs)
	}
	_, err := io.WriteString(w, formatter.GenerateFormattedSpecs(outs))
	return err
}

// run generates outputs for args and hands them to emit.
func run(cmd *cobra.Command, args []string, emit func(io.Writer, []specgen.Output) error) error {
	if len(args) == 0 {
		return errNoPaths
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	engine, err := newEngine()
	if err != nil {
		return err
	}
	outs, err := generate(ctx, logger, engine, args)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), outPath, func(w io.Writer) error {
		return emit(w, outs)
	})
}

func generate(ctx context.Context, logger *zap.Logger, engine specgen.SpecEngine, paths []string) ([]specgen.Output, error) {
	outs, err := specgen.ProcessFiles(ctx, logger, engine, paths)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		return nil, err
	}
	return outs, nil
}

// writeOutput sends output to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		logger.Error("Error creating output file", zap.String("path", path), zap.Error(err))
		return err
	}
	defer f.Close()

	if err := write(f); err != nil {
		logger.Error("Error writing output file", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}
