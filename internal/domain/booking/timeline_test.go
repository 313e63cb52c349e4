package booking

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 5, hour, min, 0, 0, time.UTC)
}

func rng(startH, startM, endH, endM int) Range {
	return Range{Start: at(startH, startM), End: at(endH, endM)}
}

func TestMerge(t *testing.T) {
	got := Merge([]Range{
		rng(14, 0, 15, 0),
		rng(9, 0, 10, 0),
		rng(9, 30, 11, 0), // sobrepõe o anterior
		rng(11, 0, 12, 0), // adjacente, funde
		rng(16, 0, 16, 0), // vazio, descartado
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 merged ranges, got %d", len(got))
	}
	if !got[0].Start.Equal(at(9, 0)) || !got[0].End.Equal(at(12, 0)) {
		t.Fatalf("first range mismatch: %v", got[0])
	}
	if !got[1].Start.Equal(at(14, 0)) || !got[1].End.Equal(at(15, 0)) {
		t.Fatalf("second range mismatch: %v", got[1])
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := Merge([]Range{rng(10, 0, 9, 0)}); got != nil {
		t.Fatalf("invalid-only input must merge to nil, got %v", got)
	}
}

func TestSubtract(t *testing.T) {
	free := []Range{rng(9, 0, 18, 0)}
	busy := []Range{
		rng(10, 0, 10, 45),
		rng(12, 0, 13, 0),
		rng(17, 30, 19, 0), // atravessa o fim da janela
	}

	got := Subtract(free, busy)
	want := []Range{
		rng(9, 0, 10, 0),
		rng(10, 45, 12, 0),
		rng(13, 0, 17, 30),
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d ranges, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("range %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSubtractBusyCoversAll(t *testing.T) {
	got := Subtract([]Range{rng(9, 0, 12, 0)}, []Range{rng(8, 0, 13, 0)})
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestSubtractNoOverlap(t *testing.T) {
	got := Subtract([]Range{rng(9, 0, 12, 0)}, []Range{rng(14, 0, 15, 0)})
	if len(got) != 1 || !got[0].Start.Equal(at(9, 0)) {
		t.Fatalf("expected free range untouched, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	got := Clamp(
		[]Range{rng(9, 0, 12, 0), rng(13, 0, 18, 0)},
		at(10, 0),
		at(14, 0),
	)

	if len(got) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(got))
	}
	if !got[0].Start.Equal(at(10, 0)) {
		t.Fatalf("min bound not applied: %v", got[0])
	}
	if !got[1].End.Equal(at(14, 0)) {
		t.Fatalf("max bound not applied: %v", got[1])
	}
}

func TestClampZeroMaxMeansNoCap(t *testing.T) {
	got := Clamp([]Range{rng(9, 0, 18, 0)}, at(10, 0), time.Time{})
	if len(got) != 1 || !got[0].End.Equal(at(18, 0)) {
		t.Fatalf("zero max must not cap, got %v", got)
	}
}

func TestOverlaps(t *testing.T) {
	base := rng(10, 0, 11, 0)

	cases := []struct {
		name  string
		other Range
		want  bool
	}{
		{"identical", rng(10, 0, 11, 0), true},
		{"partial", rng(10, 30, 11, 30), true},
		{"contained", rng(10, 15, 10, 45), true},
		{"touching end", rng(11, 0, 12, 0), false}, // meio-aberto
		{"touching start", rng(9, 0, 10, 0), false},
		{"disjoint", rng(13, 0, 14, 0), false},
	}

	for _, tc := range cases {
		if got := base.Overlaps(tc.other); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
