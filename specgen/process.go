package specgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// ProgressOutput receives the progress bar of directory runs.
var ProgressOutput io.Writer = os.Stderr

var desiredExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)] && filepath.Base(path) != DefaultConfigPath
}

func ProcessFile(engine SpecEngine, path string) (Output, error) {
	return engine.Run(path)
}

func ProcessSource(engine SpecEngine, source []byte) (Output, error) {
	return engine.RunSource(source)
}

// ProcessFiles runs engine over every path in order. Directories are walked
// for typed AST files.
func ProcessFiles(ctx context.Context, logger *zap.Logger, engine SpecEngine, paths []string) ([]Output, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var outputs []Output
	for _, path := range paths {
		out, err := ProcessPath(ctx, logger, engine, path)
		if err != nil {
			logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		outputs = append(outputs, out...)
	}
	return outputs, nil
}

// ProcessPath runs engine over one file, or over every typed AST file below a
// directory using one worker per CPU. Outputs are sorted by file name. Any
// failed file fails the whole path.
func ProcessPath(ctx context.Context, logger *zap.Logger, engine SpecEngine, path string) ([]Output, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return nil, nil
		}
		out, err := ProcessFile(engine, path)
		if err != nil {
			return nil, err
		}
		return []Output{out}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && hasDesiredExtension(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}

	type result struct {
		out Output
		err error
	}
	results := make(chan result, len(files))
	sem := make(chan struct{}, runtime.NumCPU())

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(ProgressOutput),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	started := 0
	for _, fp := range files {
		select {
		case <-ctx.Done():
			for i := 0; i < started; i++ {
				<-results
			}
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		started++
		go func(fp string) {
			defer func() { <-sem }()
			out, err := ProcessFile(engine, fp)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
			}
			_ = bar.Add(1)
			results <- result{out, err}
		}(fp)
	}

	outputs := make([]Output, 0, len(files))
	var errs []error
	for range files {
		r := <-results
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		outputs = append(outputs, r.out)
	}
	_, _ = fmt.Fprintln(ProgressOutput)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].File < outputs[j].File })
	return outputs, nil
}
