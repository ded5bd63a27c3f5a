package rag

import (
	"testing"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name       string
		nodes      []Node
		wantIDs    []string
		wantScores []float64
	}{
		{
			name:    "empty input",
			nodes:   nil,
			wantIDs: []string{},
		},
		{
			name: "no duplicates pass through",
			nodes: []Node{
				{ID: "a", Text: "one", Score: 0.9, Meta: NodeMeta{SourcePath: "/p/x.md"}},
				{ID: "b", Text: "two", Score: 0.8, Meta: NodeMeta{SourcePath: "/p/x.md"}},
			},
			wantIDs:    []string{"a", "b"},
			wantScores: []float64{0.9, 0.8},
		},
		{
			name: "duplicate keeps highest score",
			nodes: []Node{
				{ID: "low", Text: "same", Score: 0.4, Meta: NodeMeta{SourcePath: "/p/x.md"}},
				{ID: "high", Text: "same", Score: 0.9, Meta: NodeMeta{SourcePath: "/p/x.md"}},
			},
			wantIDs:    []string{"high"},
			wantScores: []float64{0.9},
		},
		{
			name: "score tie keeps first occurrence",
			nodes: []Node{
				{ID: "first", Text: "same", Score: 0.7, Meta: NodeMeta{SourcePath: "/p/x.md"}},
				{ID: "second", Text: "same", Score: 0.7, Meta: NodeMeta{SourcePath: "/p/x.md"}},
			},
			wantIDs:    []string{"first"},
			wantScores: []float64{0.7},
		},
		{
			name: "same text from different sources is not a duplicate",
			nodes: []Node{
				{ID: "a", Text: "same", Score: 0.9, Meta: NodeMeta{SourcePath: "/p/x.md"}},
				{ID: "b", Text: "same", Score: 0.8, Meta: NodeMeta{SourcePath: "/p/y.md"}},
			},
			wantIDs:    []string{"a", "b"},
			wantScores: []float64{0.9, 0.8},
		},
		{
			name: "missing source paths group together",
			nodes: []Node{
				{ID: "a", Text: "same", Score: 0.5},
				{ID: "b", Text: "same", Score: 0.6},
			},
			wantIDs:    []string{"b"},
			wantScores: []float64{0.6},
		},
		{
			name: "winner replaces in place without reordering",
			nodes: []Node{
				{ID: "a", Text: "alpha", Score: 0.3, Meta: NodeMeta{SourcePath: "/p/x.md"}},
				{ID: "b", Text: "beta", Score: 0.9, Meta: NodeMeta{SourcePath: "/p/x.md"}},
				{ID: "a2", Text: "alpha", Score: 0.8, Meta: NodeMeta{SourcePath: "/p/x.md"}},
			},
			wantIDs:    []string{"a2", "b"},
			wantScores: []float64{0.8, 0.9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.nodes)

			if len(got) != len(tt.wantIDs) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("node %d ID = %q, want %q", i, got[i].ID, id)
				}
				if got[i].Score != tt.wantScores[i] {
					t.Errorf("node %d Score = %v, want %v", i, got[i].Score, tt.wantScores[i])
				}
			}
		})
	}
}

func TestDedupeDoesNotMutateInput(t *testing.T) {
	nodes := []Node{
		{ID: "low", Text: "same", Score: 0.4, Meta: NodeMeta{SourcePath: "/p/x.md"}},
		{ID: "high", Text: "same", Score: 0.9, Meta: NodeMeta{SourcePath: "/p/x.md"}},
	}

	_ = Dedupe(nodes)

	if nodes[0].ID != "low" || nodes[1].ID != "high" {
		t.Errorf("input slice was reordered: %v, %v", nodes[0].ID, nodes[1].ID)
	}
	if nodes[0].Score != 0.4 {
		t.Errorf("input node score changed to %v", nodes[0].Score)
	}
}
