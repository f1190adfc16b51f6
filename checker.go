package osmlinks

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// CheckGraph is graph which could enumerate its edges
type CheckGraph interface {
	RoadGraph
	EdgeIDs() []EdgeID
}

// Checker runs checks over every edge of the graph and passes flags to reporter
type Checker struct {
	graph            CheckGraph
	reporter         Reporter
	checks           []Check
	flagged          FlaggedSet
	workers          int
	reportUnresolved bool
	runID            uuid.UUID
	logger           logr.Logger
}

// Summary is result of single run
type Summary struct {
	RunID uuid.UUID
	// Candidate edges across all checks
	Candidates int
	// Ways evaluated (marked by this run)
	Evaluated int
	// Candidates skipped since their way has been marked already
	Skipped    int
	Flagged    int
	Unresolved int
	Reported   int
	Verdicts   map[string]map[VerdictType]int
	Duration   time.Duration
}

type checkTask struct {
	check Check
	edge  *Edge
}

// NewChecker creates checker. By default it has no checks, in-memory flagged registry and one worker per CPU
func NewChecker(graph CheckGraph, reporter Reporter, options ...func(*Checker)) *Checker {
	checker := &Checker{
		graph:    graph,
		reporter: reporter,
		workers:  runtime.NumCPU(),
		runID:    uuid.New(),
		logger:   logr.Discard(),
	}
	for _, option := range options {
		option(checker)
	}
	if checker.flagged == nil {
		checker.flagged = NewMemoryFlaggedSet()
	}
	if checker.workers < 1 {
		checker.workers = 1
	}
	return checker
}

func WithChecks(checks ...Check) func(*Checker) {
	return func(checker *Checker) {
		checker.checks = append(checker.checks, checks...)
	}
}

func WithFlaggedSet(flagged FlaggedSet) func(*Checker) {
	return func(checker *Checker) {
		checker.flagged = flagged
	}
}

func WithWorkers(workers int) func(*Checker) {
	return func(checker *Checker) {
		checker.workers = workers
	}
}

func WithCheckerLogger(logger logr.Logger) func(*Checker) {
	return func(checker *Checker) {
		checker.logger = logger
	}
}

// WithReportUnresolved enables reporting of no connection and no link equivalent verdicts
func WithReportUnresolved(report bool) func(*Checker) {
	return func(checker *Checker) {
		checker.reportUnresolved = report
	}
}

func WithRunID(runID uuid.UUID) func(*Checker) {
	return func(checker *Checker) {
		checker.runID = runID
	}
}

// RunID returns identifier of the run
func (checker *Checker) RunID() uuid.UUID {
	return checker.runID
}

// Run evaluates candidate edges in ascending order of identifiers.
// Every way is evaluated at most once per check, even if its edges are processed by different workers.
// Way whose flag could not be reported is unmarked, so the next run with the same registry reports it
func (checker *Checker) Run(ctx context.Context) (Summary, error) {
	st := time.Now()
	incRuns()
	setWorkers(checker.workers)
	summary := Summary{
		RunID:    checker.runID,
		Verdicts: make(map[string]map[VerdictType]int, len(checker.checks)),
	}
	for _, check := range checker.checks {
		summary.Verdicts[check.Name()] = make(map[VerdictType]int)
	}
	checker.logger.V(1).Info("Checking graph", "run", checker.runID.String(), "checks", len(checker.checks), "workers", checker.workers)

	var mu sync.Mutex
	tasks := make(chan checkTask, checker.workers*4)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(tasks)
		for _, id := range checker.graph.EdgeIDs() {
			edge, ok := checker.graph.Edge(id)
			if !ok {
				continue
			}
			for _, check := range checker.checks {
				if !check.Candidate(edge) {
					continue
				}
				mu.Lock()
				summary.Candidates++
				mu.Unlock()
				select {
				case tasks <- checkTask{check: check, edge: edge}:
				case <-groupCtx.Done():
					return groupCtx.Err()
				}
			}
		}
		return nil
	})
	for i := 0; i < checker.workers; i++ {
		group.Go(func() error {
			for task := range tasks {
				if err := checker.process(groupCtx, task, &summary, &mu); err != nil {
					return err
				}
			}
			return nil
		})
	}
	err := group.Wait()
	summary.Duration = time.Since(st)
	if err != nil {
		return summary, errors.Wrap(err, "Can't complete check run")
	}
	checker.logger.V(1).Info("Done checking graph",
		"run", checker.runID.String(),
		"evaluated", summary.Evaluated,
		"flagged", summary.Flagged,
		"reported", summary.Reported,
		"elapsed", summary.Duration.String(),
	)
	return summary, nil
}

func (checker *Checker) process(ctx context.Context, task checkTask, summary *Summary, mu *sync.Mutex) error {
	name := task.check.Name()
	key := FlaggedKey{CheckName: name, WayID: task.edge.WayID}
	marked, err := checker.flagged.MarkIfAbsent(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "Can't mark way %d", task.edge.WayID)
	}
	if !marked {
		incSkipped(name)
		mu.Lock()
		summary.Skipped++
		mu.Unlock()
		return nil
	}

	way, verdict := task.check.Evaluate(task.edge.ID)
	incEvaluated(name)
	incVerdict(name, verdict.Type)
	report := verdict.Flagged() || (checker.reportUnresolved && verdict.Unresolved())

	mu.Lock()
	summary.Evaluated++
	summary.Verdicts[name][verdict.Type]++
	if verdict.Flagged() {
		summary.Flagged++
	}
	if verdict.Unresolved() {
		summary.Unresolved++
	}
	mu.Unlock()

	if !report {
		return nil
	}
	flag := NewFlag(checker.runID, task.check, &way, verdict, checker.graph)
	if err := checker.reporter.Report(ctx, flag); err != nil {
		// Release the claim even if the run is being cancelled
		if unmarkErr := checker.flagged.Unmark(context.WithoutCancel(ctx), key); unmarkErr != nil {
			checker.logger.Error(unmarkErr, "Can't release flagged way", "check", name, "way", way.ID)
		}
		return errors.Wrapf(err, "Can't report way %d", way.ID)
	}
	incReported(name)
	mu.Lock()
	summary.Reported++
	mu.Unlock()
	checker.logger.V(2).Info("Way flagged", "check", name, "way", way.ID, "verdict", verdict.Type.String())
	return nil
}
