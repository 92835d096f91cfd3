// Package scan runs one full scan over a root: select candidates, fan them out
// to a bounded worker pool, and aggregate the per-file results.
package scan

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"passcan/internal/detect"
	"passcan/internal/model"
	"passcan/internal/selector"
)

// Options configure a scan run. Zero values select defaults.
type Options struct {
	Workers  int
	Detector *detect.Detector
	Selector *selector.Selector
	Logger   *zap.Logger

	// OnCandidates is called once with the number of candidate files before
	// scanning begins.
	OnCandidates func(n int)

	// OnResult is called from worker goroutines as each file finishes and
	// must be safe for concurrent use.
	OnResult func(model.ScanResult)
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Detector == nil {
		o.Detector = detect.New(detect.Options{}, o.Logger)
	}
	if o.Selector == nil {
		o.Selector = selector.New(selector.DefaultRules(), o.Logger)
	}
	return o
}

// Run scans every candidate file under root and returns the results sorted
// by path with the run aggregates. It never fails: unreadable files become
// Error results and an inaccessible root yields an empty report.
func Run(root string, opts Options) model.Report {
	opts = opts.withDefaults()
	runID := uuid.NewString()
	log := opts.Logger.With(zap.String("run_id", runID), zap.String("root", root))

	start := time.Now()
	files := opts.Selector.Collect(root)
	log.Debug("scan started",
		zap.Int("candidates", len(files)),
		zap.Int("workers", opts.Workers),
		zap.Stringer("mode", opts.Detector.Mode()))
	if opts.OnCandidates != nil {
		opts.OnCandidates(len(files))
	}

	results := scanAll(files, opts)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	summary := Summarize(results, time.Since(start))
	summary.RunID = runID
	summary.Root = root

	log.Info("scan finished",
		zap.Int("files", summary.FilesScanned),
		zap.Int("files_with_secrets", summary.FilesWithSecrets),
		zap.Int("secrets", summary.TotalSecrets),
		zap.Int("errors", summary.Errors),
		zap.Duration("elapsed", summary.Elapsed))

	return model.Report{Summary: summary, Results: results}
}

// scanAll feeds paths to a fixed number of workers and collects one result
// per path.
func scanAll(files []string, opts Options) []model.ScanResult {
	var (
		mu      sync.Mutex
		results = make([]model.ScanResult, 0, len(files))
		queue   = make(chan string)
	)

	var g errgroup.Group
	for i := 0; i < opts.Workers; i++ {
		g.Go(func() error {
			for path := range queue {
				res := opts.Detector.ScanFile(path)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				if opts.OnResult != nil {
					opts.OnResult(res)
				}
			}
			return nil
		})
	}

	for _, path := range files {
		queue <- path
	}
	close(queue)
	_ = g.Wait()

	return results
}

// Summarize computes run aggregates. Error results count as scanned but
// never as secret-bearing.
func Summarize(results []model.ScanResult, elapsed time.Duration) model.Summary {
	s := model.Summary{
		FilesScanned: len(results),
		Elapsed:      elapsed,
	}
	for _, r := range results {
		switch r.Status {
		case model.StatusAlert:
			s.FilesWithSecrets++
			s.TotalSecrets += len(r.Secrets)
		case model.StatusError:
			s.Errors++
		}
	}
	return s
}

// Runner serializes scans so that callers re-invoking Run for the same root
// (a watch loop, a TUI rescan) never overlap.
type Runner struct {
	mu   sync.Mutex
	opts Options
}

// NewRunner creates a Runner using opts for every run.
func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts.withDefaults()}
}

// Run performs one full scan, waiting for any scan already in progress.
func (r *Runner) Run(root string) model.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Run(root, r.opts)
}

// RunWith performs one full scan with per-run progress hooks.
func (r *Runner) RunWith(root string, onCandidates func(int), onResult func(model.ScanResult)) model.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	opts := r.opts
	opts.OnCandidates = onCandidates
	opts.OnResult = onResult
	return Run(root, opts)
}
