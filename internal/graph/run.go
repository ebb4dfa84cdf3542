package graph

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status of a model after a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusSkipped marks a model whose upstream did not commit. A skip is
	// not a failure of the model itself.
	StatusSkipped Status = "skipped"
)

// Outcome records what happened to one model during a run.
type Outcome struct {
	Model  string
	Status Status
	Err    error  // set for failed models
	Reason string // set for skipped models
}

// RunFunc builds one model. It must not return until the model's output is
// committed and visible to downstream readers.
type RunFunc func(ctx context.Context, model Model) error

// Run executes every model wave by wave. Models inside a wave run in
// parallel, bounded by limit (0 or negative means unbounded). A failed model
// fails alone: its transitive dependents are skipped with a dependency-unmet
// reason while unrelated branches keep running. Outcomes come back in
// topological order. Run stops early only when ctx is done.
func (g *Graph) Run(ctx context.Context, limit int, fn RunFunc) ([]Outcome, error) {
	var mu sync.Mutex
	state := make(map[string]Status, len(g.models))
	recorded := make(map[string]Outcome, len(g.models))

	for _, wave := range g.waves {
		if err := ctx.Err(); err != nil {
			return g.collect(recorded), err
		}

		var runnable []Model
		for _, name := range wave {
			m := g.byName[name]
			if unmet := unmetDeps(m, state); len(unmet) > 0 {
				state[name] = StatusSkipped
				recorded[name] = Outcome{
					Model:  name,
					Status: StatusSkipped,
					Reason: "dependency unmet: " + strings.Join(unmet, ", "),
				}
				continue
			}
			runnable = append(runnable, m)
		}

		var eg errgroup.Group
		if limit > 0 {
			eg.SetLimit(limit)
		}
		for _, m := range runnable {
			eg.Go(func() error {
				err := fn(ctx, m)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					state[m.Name] = StatusFailed
					recorded[m.Name] = Outcome{Model: m.Name, Status: StatusFailed, Err: err}
				} else {
					state[m.Name] = StatusSucceeded
					recorded[m.Name] = Outcome{Model: m.Name, Status: StatusSucceeded}
				}
				return nil
			})
		}
		// Failures are recorded per model, never returned: a failed model
		// must not cancel unrelated models in the same wave.
		_ = eg.Wait()
	}

	return g.collect(recorded), nil
}

// unmetDeps returns the dependencies that did not succeed, in declaration
// order.
func unmetDeps(m Model, state map[string]Status) []string {
	var unmet []string
	for _, dep := range m.DependsOn {
		if state[dep] != StatusSucceeded {
			unmet = append(unmet, dep)
		}
	}
	return unmet
}

// collect emits recorded outcomes in topological order.
func (g *Graph) collect(recorded map[string]Outcome) []Outcome {
	outcomes := make([]Outcome, 0, len(recorded))
	for _, m := range g.models {
		if o, ok := recorded[m.Name]; ok {
			outcomes = append(outcomes, o)
		}
	}
	return outcomes
}
