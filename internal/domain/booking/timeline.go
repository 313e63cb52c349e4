package booking

import (
	"sort"
	"time"
)

// ======================================================
// TIMELINE
// ======================================================
// Álgebra de intervalos meio-abertos [Start, End) usada pelo resolver
// de disponibilidade.

type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) IsValid() bool {
	return r.End.After(r.Start)
}

func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Merge ordena e funde intervalos adjacentes/sobrepostos em intervalos
// máximos.
func Merge(ranges []Range) []Range {
	valid := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.IsValid() {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Start.Before(valid[j].Start)
	})

	merged := []Range{valid[0]}
	for _, r := range valid[1:] {
		last := &merged[len(merged)-1]
		if !r.Start.After(last.End) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}

	return merged
}

// Subtract remove os intervalos ocupados de cada janela livre.
func Subtract(free []Range, busy []Range) []Range {
	busy = Merge(busy)

	out := make([]Range, 0, len(free))
	for _, f := range free {
		cur := f
		for _, b := range busy {
			if !cur.Overlaps(b) {
				continue
			}
			if b.Start.After(cur.Start) {
				out = append(out, Range{Start: cur.Start, End: b.Start})
			}
			if b.End.After(cur.Start) {
				cur.Start = b.End
			}
			if !cur.IsValid() {
				break
			}
		}
		if cur.IsValid() {
			out = append(out, cur)
		}
	}

	return out
}

// Clamp corta os intervalos para dentro da janela de agendamento
// [min, max]. max zero significa "sem teto".
func Clamp(ranges []Range, min, max time.Time) []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Start.Before(min) {
			r.Start = min
		}
		if !max.IsZero() && r.End.After(max) {
			r.End = max
		}
		if r.IsValid() {
			out = append(out, r)
		}
	}
	return out
}
