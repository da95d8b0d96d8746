package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1},
		{"punctuation only is empty", "--", " ", 1},
		{"one empty", "", "abc", 0},
		{"identical", "Hospital General", "Hospital General", 1},
		{"case and diacritics", "José Peña", "jose pena", 1},
		{"whitespace and punctuation ignored", "St. Mary's", "st marys", 1},
		{"one edit", "kitten", "sitten", 1 - 1.0/6},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarityProperties(t *testing.T) {
	pairs := [][2]string{
		{"Maria Lopez", "John Smith"},
		{"Universidad Nacional Autónoma de México", "Universidad Nacional Autonoma"},
		{"MD", "Doctor of Medicine"},
		{"", "x"},
		{"Ñandú", "nandu"},
	}
	for _, p := range pairs {
		first := Similarity(p[0], p[1])
		assert.Equal(t, first, Similarity(p[0], p[1]), "deterministic for %q", p)
		assert.Equal(t, first, Similarity(p[1], p[0]), "symmetric for %q", p)
		assert.GreaterOrEqual(t, first, 0.0)
		assert.LessOrEqual(t, first, 1.0)
	}
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"reordered", "Lopez Maria", "María López", 1},
		{"extra family name", "Ana Ruiz", "Ana Ruiz Garcia", 2.0 / 3},
		{"different person", "Maria Lopez", "John Smith", 0},
		{"both empty", "", "", 1},
		{"one empty", "Ana", "", 0},
		{"repeated tokens count once", "Ana Ana Ruiz", "Ana Ruiz", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NameSimilarity(tt.a, tt.b), 1e-9)
			assert.Equal(t, NameSimilarity(tt.a, tt.b), NameSimilarity(tt.b, tt.a))
		})
	}
}

func TestNameSimilarityIsDistinctFromGeneric(t *testing.T) {
	assert.Less(t, Similarity("Lopez Maria", "Maria Lopez"), NameSimilarity("Lopez Maria", "Maria Lopez"))
}

func FuzzSimilarity(f *testing.F) {
	f.Add("Ana Ruiz", "Ana Ruiz Garcia")
	f.Add("", "é")
	f.Fuzz(func(t *testing.T, a, b string) {
		s := Similarity(a, b)
		if s < 0 || s > 1 {
			t.Fatalf("similarity out of range: %v", s)
		}
		if s != Similarity(b, a) {
			t.Fatalf("similarity not symmetric for %q %q", a, b)
		}
		n := NameSimilarity(a, b)
		if n < 0 || n > 1 {
			t.Fatalf("name similarity out of range: %v", n)
		}
	})
}
