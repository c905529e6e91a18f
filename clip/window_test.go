package clip

import (
	"math/rand/v2"
	"testing"
)

func TestPickWindow_StaysInsideSource(t *testing.T) {
	durations := []float64{1320.5, 60, 10.5, 10, 7.25, 3, 0.5}

	for seed := uint64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31+1))
		for _, d := range durations {
			w := PickWindow(rng, d, 5, 10)

			if w.Start < 0 {
				t.Fatalf("seed %d, duration %v: negative start %v", seed, d, w.Start)
			}
			if w.End() > d+1e-9 {
				t.Fatalf("seed %d, duration %v: end %v past source", seed, d, w.End())
			}
			if w.Length > 10 {
				t.Fatalf("seed %d, duration %v: length %v above max", seed, d, w.Length)
			}
			if d >= 10 && w.Length < 5 {
				t.Fatalf("seed %d, duration %v: length %v below min on a long source", seed, d, w.Length)
			}
		}
	}
}

func TestPickWindow_IntegerLengthOnLongSources(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	seen := make(map[float64]bool)
	for i := 0; i < 500; i++ {
		w := PickWindow(rng, 3600, 5, 10)
		if w.Length != float64(int(w.Length)) {
			t.Fatalf("length %v is not a whole number of seconds", w.Length)
		}
		seen[w.Length] = true
	}
	for l := 5; l <= 10; l++ {
		if !seen[float64(l)] {
			t.Errorf("length %d never chosen in 500 draws", l)
		}
	}
}

func TestPickWindow_ShortSourceClamps(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	w := PickWindow(rng, 3, 5, 10)

	if w.Start != 0 {
		t.Errorf("Start = %v, want 0", w.Start)
	}
	if w.Length != 3 {
		t.Errorf("Length = %v, want whole source (3)", w.Length)
	}
}

func TestPickWindow_FixedLength(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 50; i++ {
		if w := PickWindow(rng, 100, 7, 7); w.Length != 7 {
			t.Fatalf("Length = %v, want 7", w.Length)
		}
	}
}

func TestPickWindow_Deterministic(t *testing.T) {
	a := PickWindow(rand.New(rand.NewPCG(5, 6)), 500, 5, 10)
	b := PickWindow(rand.New(rand.NewPCG(5, 6)), 500, 5, 10)
	if a != b {
		t.Errorf("same seed gave %v and %v", a, b)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		in       Window
		duration float64
		want     Window
	}{
		{"inside", Window{Start: 10, Length: 5}, 100, Window{Start: 10, Length: 5}},
		{"negative start", Window{Start: -4, Length: 8}, 100, Window{Start: 0, Length: 8}},
		{"runs past end", Window{Start: 97, Length: 8}, 100, Window{Start: 97, Length: 3}},
		{"start past end", Window{Start: 120, Length: 8}, 100, Window{Start: 100, Length: 0}},
		{"longer than source", Window{Start: -1, Length: 10}, 6, Window{Start: 0, Length: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.in, tt.duration); got != tt.want {
				t.Errorf("Clamp(%+v, %v) = %+v, want %+v", tt.in, tt.duration, got, tt.want)
			}
		})
	}
}

func TestWindowAt(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 2))
	w := WindowAt(rng, 95, 100, 10, 10)
	if w.Start != 95 || w.Length != 5 {
		t.Errorf("WindowAt = %+v, want start 95 length 5", w)
	}
}

func TestWindow_String(t *testing.T) {
	w := Window{Start: 61, Length: 7.5}
	if got := w.String(); got != "0:01:01 - 0:01:08 (7.50s)" {
		t.Errorf("String() = %q", got)
	}
}
