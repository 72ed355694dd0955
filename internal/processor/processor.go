package processor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Run processes every image under opts.InputRoot and returns the
// aggregated outcome. Configuration problems are returned before any file
// is touched; failures on individual files are recorded in the outcome
// and never stop the run. Cancelling ctx stops dispatching new files and
// returns what was processed so far together with ctx.Err().
func Run(ctx context.Context, opts Options, updates chan<- ProgressUpdate) (RunOutcome, error) {
	var outcome RunOutcome

	root, err := checkOptions(opts)
	if err != nil {
		return outcome, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var skip string
	if opts.Policy.IsMirror() {
		absOut, err := filepath.Abs(opts.Policy.MirrorRoot())
		if err != nil {
			return outcome, ConfigError("output root %s: %v", opts.Policy.MirrorRoot(), err)
		}
		opts.Policy = Mirror(absOut)
		if filepath.Clean(absOut) != filepath.Clean(root) && isWithin(absOut, root) {
			skip = absOut
		}
	}

	p := &pipeline{root: root, opts: opts, log: log}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	log.Debug("run starting",
		zap.String("root", root),
		zap.Stringer("policy", opts.Policy),
		zap.Int("workers", workers),
		zap.Bool("dry_run", opts.DryRun),
	)

	jobs := make(chan Job)
	results := make(chan Outcome)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(jobs, results, p)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			outcome.Add(res)
			if updates != nil {
				updates <- progressFor(res)
			}
		}
	}()

	go func() {
		defer close(jobs)
		for job := range Discover(root, skip) {
			if updates != nil {
				updates <- ProgressUpdate{TotalDelta: 1}
			}
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	log.Debug("run finished",
		zap.Int("changed", outcome.Changed),
		zap.Int("skipped", outcome.Skipped),
		zap.Int("errored", outcome.Errored),
	)

	if err := ctx.Err(); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func worker(jobs <-chan Job, results chan<- Outcome, p *pipeline) {
	for job := range jobs {
		results <- p.process(job)
	}
}

// checkOptions validates opts and returns the absolute input root.
func checkOptions(opts Options) (string, error) {
	if err := opts.Constraints.Validate(); err != nil {
		return "", err
	}
	if opts.InputRoot == "" {
		return "", ConfigError("input directory is required")
	}

	root, err := filepath.Abs(opts.InputRoot)
	if err != nil {
		return "", ConfigError("input directory %s: %v", opts.InputRoot, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", ConfigError("input dir does not exist or is not a directory: %s", root)
	}
	if !info.IsDir() {
		return "", ConfigError("input dir does not exist or is not a directory: %s", root)
	}
	return root, nil
}
