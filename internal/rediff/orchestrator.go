package rediff

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"mergeview/internal/compare"
)

// Orchestrator runs at most one comparison at a time. Starting a new one
// cancels the previous; every run delivers exactly one Result unless the
// orchestrator is stopped first.
type Orchestrator struct {
	oracle  compare.Oracle
	log     *zap.Logger
	results chan Result

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	stopped    bool
	done       chan struct{}
	wg         sync.WaitGroup
}

func NewOrchestrator(oracle compare.Oracle, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		oracle:  oracle,
		log:     log.Named("rediff"),
		results: make(chan Result, 4),
		done:    make(chan struct{}),
	}
}

// Results delivers finished comparisons to the owner.
func (o *Orchestrator) Results() <-chan Result {
	return o.results
}

// SetOracle swaps the oracle used by subsequent runs.
func (o *Orchestrator) SetOracle(oracle compare.Oracle) {
	o.mu.Lock()
	o.oracle = oracle
	o.mu.Unlock()
}

// Start cancels the in-flight comparison and begins a new one for in. It
// returns the generation that the eventual Result carries, or 0 once stopped.
func (o *Orchestrator) Start(ctx context.Context, in Input) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return 0
	}
	if o.cancel != nil {
		o.cancel()
	}
	o.generation++
	gen := o.generation
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	oracle := o.oracle

	s1, s2 := in.Stamps()
	o.log.Debug("compare started",
		zap.Uint64("generation", gen),
		zap.Int64("stamp1", s1),
		zap.Int64("stamp2", s2),
		zap.Stringer("policy", in.Policy))

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer cancel()
		res := Recompute(runCtx, oracle, in)
		res.Generation = gen
		o.logResult(res)
		select {
		case o.results <- res:
		case <-o.done:
		}
	}()
	return gen
}

// Run computes in on the calling goroutine. Like Start it cancels and
// supersedes any in-flight comparison.
func (o *Orchestrator) Run(ctx context.Context, in Input) Result {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.generation++
	gen := o.generation
	oracle := o.oracle
	o.mu.Unlock()

	res := Recompute(ctx, oracle, in)
	res.Generation = gen
	o.logResult(res)
	return res
}

// Cancel aborts the in-flight comparison; its result surfaces as
// OutcomeCancelled.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

// Latest is the generation of the most recent Start.
func (o *Orchestrator) Latest() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation
}

// Stop cancels any work and waits for the workers to exit. Results not yet
// delivered are dropped.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	close(o.done)
	o.mu.Unlock()
	o.wg.Wait()
}

func (o *Orchestrator) logResult(res Result) {
	fields := []zap.Field{
		zap.Uint64("generation", res.Generation),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("fragments", len(res.Fragments)),
		zap.Bool("equal", res.Equal),
	}
	switch res.Outcome {
	case OutcomeFailed:
		o.log.Warn("compare failed", append(fields, zap.Error(res.Err))...)
	case OutcomeTooLarge:
		o.log.Info("compare refused", append(fields, zap.Error(res.Err))...)
	default:
		o.log.Debug("compare finished", fields...)
	}
}
