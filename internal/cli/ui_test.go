package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/pipeline"
)

func TestStatsLine(t *testing.T) {
	tests := []struct {
		name   string
		stats  pipeline.Stats
		cached bool
		want   []string
		absent []string
	}{
		{
			name:   "fresh",
			stats:  pipeline.Stats{Individuals: 4, Generations: 2, Slots: 4},
			want:   []string{"4 individuals", "2 generations", iconFresh},
			absent: []string{"repeated", iconCached},
		},
		{
			name:   "cached with repeats",
			stats:  pipeline.Stats{Individuals: 5, Generations: 3, Slots: 7},
			cached: true,
			want:   []string{"5 individuals", "2 repeated", iconCached},
		},
		{
			name:   "empty",
			want:   []string{iconFresh},
			absent: []string{"individuals"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statsLine(tt.stats, tt.cached)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("statsLine() = %q, missing %q", got, w)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(got, a) {
					t.Errorf("statsLine() = %q, should not contain %q", got, a)
				}
			}
		})
	}
}

func TestGenerationTable(t *testing.T) {
	p := &pedigree.Pedigree{
		IDs:    []string{"dad", "mum", "", "bob"},
		Father: []int{pedigree.NoParent, pedigree.NoParent, 0, 0},
		Mother: []int{pedigree.NoParent, pedigree.NoParent, 1, 1},
		Sex:    []pedigree.Sex{pedigree.Male, pedigree.Female, pedigree.Female, pedigree.Male},
	}
	got := generationTable(p, []int{0, 0, 1, 1})

	for _, want := range []string{"GEN", "INDIVIDUALS", "dad mum", "3 bob"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}
