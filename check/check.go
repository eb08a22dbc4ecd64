package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/fparse/internal"
	tt "github.com/gnolang/fparse/internal/types"
	"github.com/gnolang/fparse/scanner"
)

type Engine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// Options control how directories are expanded and processed.
type Options struct {
	Extensions []string  // defaults to scanner.DefaultExtensions
	Workers    int       // defaults to runtime.NumCPU()
	Progress   io.Writer // progress bar destination, nil for none
}

// New loads the configuration at configurationPath and builds an engine
// from it.
func New(configurationPath string) (*internal.Engine, Config, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, config, err
	}
	engine, err := NewFromConfig(config, configurationPath)
	return engine, config, err
}

// NewFromConfig builds an engine with the rules, ignored paths and cache
// settings of config. The configuration file, when it exists, becomes a
// cache dependency.
func NewFromConfig(config Config, configurationPath string) (*internal.Engine, error) {
	engine, err := internal.NewEngine(config.Rules)
	if err != nil {
		return nil, err
	}
	for _, path := range config.IgnorePaths {
		engine.IgnorePath(path)
	}

	if config.Cache.Enabled {
		var deps []string
		if configurationPath != "" {
			if _, err := os.Stat(configurationPath); err == nil {
				deps = append(deps, configurationPath)
			}
		}
		cache, err := engine.EnableCache(config.Cache.Dir, deps...)
		if err != nil {
			return nil, fmt.Errorf("error enabling cache: %w", err)
		}
		maxAge, err := config.maxAge()
		if err != nil {
			return nil, err
		}
		cache.SetMaxAge(maxAge)
	}
	return engine, nil
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	sources [][]byte,
	processor func(Engine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	opts Options,
	processor func(Engine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	var errs []error
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, opts, processor)
		allIssues = append(allIssues, issues...)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return allIssues, err
		}
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			errs = append(errs, err)
		}
	}

	return allIssues, errors.Join(errs...)
}

// ProcessPath processes a single file, or every source file below a
// directory. Files that fail are logged and reported together once the
// others are done. On cancellation the issues collected so far are
// returned with the context error.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	opts Options,
	processor func(Engine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		return processor(engine, path)
	}

	found, err := scanner.New(path, opts.Extensions...).Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}
	files := make([]string, len(found))
	for i, f := range found {
		files[i] = f.Path
	}
	return processConcurrently(ctx, logger, engine, path, files, opts, processor)
}

func processConcurrently(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	root string,
	files []string,
	opts Options,
	processor func(Engine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	bar := newProgressBar(opts.Progress, len(files), root)

	// results keep the scan order regardless of completion order
	results := make([][]tt.Issue, len(files))
	var (
		mu   sync.Mutex
		errs []error
	)

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, fp := range files {
		if ctx.Err() != nil {
			break
		}
		i, fp := i, fp
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fileIssues, err := processor(engine, fp)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			} else {
				results[i] = fileIssues
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if bar != nil {
		_ = bar.Finish()
	}

	issues := make([]tt.Issue, 0)
	for _, r := range results {
		issues = append(issues, r...)
	}
	if err := ctx.Err(); err != nil {
		return issues, err
	}
	return issues, errors.Join(errs...)
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	if w == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(filepath.Base(description)),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func ProcessFile(engine Engine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine Engine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}
