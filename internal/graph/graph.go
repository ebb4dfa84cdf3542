// Package graph resolves the warehouse model dependency graph. Models are
// declared as typed descriptors with explicit dependencies; the graph is
// validated once (unknown references, duplicates, cycles) and scheduled as
// topological waves. Models within a wave share no ancestry and may run in
// parallel.
package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a model by its warehouse layer.
type Kind string

const (
	KindStaging   Kind = "staging"
	KindDimension Kind = "dimension"
	KindFact      Kind = "fact"
)

// Materializations describe how a model commits its output.
const (
	MaterializationTable       = "table"       // truncate and rebuild whole
	MaterializationSCD2        = "scd2"        // append-only versioned history
	MaterializationIncremental = "incremental" // watermark-gated upsert
)

// Model is one node of the dependency graph.
type Model struct {
	Name            string
	Kind            Kind
	Materialization string
	DependsOn       []string
}

// Graph is a validated model graph with a precomputed wave schedule.
type Graph struct {
	models []Model
	byName map[string]Model
	waves  [][]string
}

// New validates the model set and computes the wave schedule. It returns an
// error for duplicate names, dependencies on undeclared models, and cycles.
func New(models []Model) (*Graph, error) {
	byName := make(map[string]Model, len(models))
	for _, m := range models {
		if m.Name == "" {
			return nil, fmt.Errorf("model with empty name")
		}
		if _, ok := byName[m.Name]; ok {
			return nil, fmt.Errorf("duplicate model %q", m.Name)
		}
		byName[m.Name] = m
	}

	for _, m := range models {
		for _, dep := range m.DependsOn {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("model %q depends on undeclared model %q", m.Name, dep)
			}
		}
	}

	waves, err := schedule(models, byName)
	if err != nil {
		return nil, err
	}

	g := &Graph{byName: byName, waves: waves}
	for _, wave := range waves {
		for _, name := range wave {
			g.models = append(g.models, byName[name])
		}
	}
	return g, nil
}

// schedule computes topological waves: wave n holds every model whose
// dependencies all sit in earlier waves. Names within a wave are sorted so
// the schedule is deterministic.
func schedule(models []Model, byName map[string]Model) ([][]string, error) {
	indegree := make(map[string]int, len(models))
	dependents := make(map[string][]string, len(models))
	for _, m := range models {
		indegree[m.Name] = len(m.DependsOn)
		for _, dep := range m.DependsOn {
			dependents[dep] = append(dependents[dep], m.Name)
		}
	}

	var waves [][]string
	scheduled := 0
	for scheduled < len(models) {
		var wave []string
		for name, deg := range indegree {
			if deg == 0 {
				wave = append(wave, name)
			}
		}
		if len(wave) == 0 {
			var stuck []string
			for name, deg := range indegree {
				if deg > 0 {
					stuck = append(stuck, name)
				}
			}
			sort.Strings(stuck)
			return nil, fmt.Errorf("dependency cycle involving %s", strings.Join(stuck, ", "))
		}
		sort.Strings(wave)

		for _, name := range wave {
			delete(indegree, name)
			for _, dependent := range dependents[name] {
				indegree[dependent]--
			}
		}
		scheduled += len(wave)
		waves = append(waves, wave)
	}
	return waves, nil
}

// Models returns every model in topological order.
func (g *Graph) Models() []Model {
	out := make([]Model, len(g.models))
	copy(out, g.models)
	return out
}

// Waves returns the wave schedule, upstream waves first.
func (g *Graph) Waves() [][]string {
	out := make([][]string, len(g.waves))
	for i, wave := range g.waves {
		out[i] = append([]string(nil), wave...)
	}
	return out
}

// Lookup returns the descriptor for a model name.
func (g *Graph) Lookup(name string) (Model, bool) {
	m, ok := g.byName[name]
	return m, ok
}

// Subset returns the graph restricted to the selected models and all of
// their ancestors. Running a subset without its ancestors would build
// against stale upstream state.
func (g *Graph) Subset(selected []string) (*Graph, error) {
	keep := make(map[string]bool, len(selected))
	var walk func(name string) error
	walk = func(name string) error {
		m, ok := g.byName[name]
		if !ok {
			return fmt.Errorf("unknown model %q", name)
		}
		if keep[name] {
			return nil
		}
		keep[name] = true
		for _, dep := range m.DependsOn {
			if err := walk(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range selected {
		if err := walk(name); err != nil {
			return nil, err
		}
	}

	var models []Model
	for _, m := range g.models {
		if keep[m.Name] {
			models = append(models, m)
		}
	}
	return New(models)
}
