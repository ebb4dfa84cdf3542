package graph

import (
	"reflect"
	"strings"
	"testing"
)

// warehouseModels mirrors the production model set: four staging models,
// two dimensions, two facts.
func warehouseModels() []Model {
	return []Model{
		{Name: "stg_customers", Kind: KindStaging},
		{Name: "stg_products", Kind: KindStaging},
		{Name: "stg_orders", Kind: KindStaging},
		{Name: "stg_order_items", Kind: KindStaging},
		{Name: "dim_customers", Kind: KindDimension, DependsOn: []string{"stg_customers"}},
		{Name: "dim_products", Kind: KindDimension, DependsOn: []string{"stg_products"}},
		{Name: "fact_orders", Kind: KindFact, DependsOn: []string{"stg_orders", "dim_customers"}},
		{Name: "fact_order_items", Kind: KindFact, DependsOn: []string{"stg_order_items", "stg_orders", "dim_products", "fact_orders"}},
	}
}

func TestNew_WaveSchedule(t *testing.T) {
	g, err := New(warehouseModels())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	want := [][]string{
		{"stg_customers", "stg_order_items", "stg_orders", "stg_products"},
		{"dim_customers", "dim_products"},
		{"fact_orders"},
		{"fact_order_items"},
	}
	if got := g.Waves(); !reflect.DeepEqual(got, want) {
		t.Errorf("Waves() = %v, want %v", got, want)
	}
}

func TestNew_ModelsInTopologicalOrder(t *testing.T) {
	g, err := New(warehouseModels())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	position := make(map[string]int)
	for i, m := range g.Models() {
		position[m.Name] = i
	}
	for _, m := range warehouseModels() {
		for _, dep := range m.DependsOn {
			if position[dep] >= position[m.Name] {
				t.Errorf("%s scheduled before its dependency %s", m.Name, dep)
			}
		}
	}
}

func TestNew_RejectsCycle(t *testing.T) {
	_, err := New([]Model{
		{Name: "a", DependsOn: []string{"c"}},
		{Name: "b", DependsOn: []string{"a"}},
		{Name: "c", DependsOn: []string{"b"}},
	})
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error = %v, want cycle mention", err)
	}
}

func TestNew_RejectsSelfDependency(t *testing.T) {
	_, err := New([]Model{{Name: "a", DependsOn: []string{"a"}}})
	if err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestNew_RejectsUndeclaredDependency(t *testing.T) {
	_, err := New([]Model{{Name: "a", DependsOn: []string{"ghost"}}})
	if err == nil {
		t.Fatal("expected error for undeclared dependency")
	}
}

func TestNew_RejectsDuplicateName(t *testing.T) {
	_, err := New([]Model{{Name: "a"}, {Name: "a"}})
	if err == nil {
		t.Fatal("expected error for duplicate model")
	}
}

func TestSubset_PullsInAncestors(t *testing.T) {
	g, err := New(warehouseModels())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sub, err := g.Subset([]string{"fact_orders"})
	if err != nil {
		t.Fatalf("Subset failed: %v", err)
	}

	var names []string
	for _, m := range sub.Models() {
		names = append(names, m.Name)
	}
	want := map[string]bool{
		"stg_customers": true, "stg_orders": true,
		"dim_customers": true, "fact_orders": true,
	}
	if len(names) != len(want) {
		t.Fatalf("subset = %v, want exactly %d models", names, len(want))
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected model %s in subset", n)
		}
	}
}

func TestSubset_UnknownModel(t *testing.T) {
	g, err := New(warehouseModels())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := g.Subset([]string{"dim_ghosts"}); err == nil {
		t.Fatal("expected error for unknown model")
	}
}
