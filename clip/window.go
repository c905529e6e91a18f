package clip

import (
	"fmt"
	"math/rand/v2"

	"github.com/user/cliporama/pkg/timeutil"
)

// Window is the part of a source video that becomes the clip.
type Window struct {
	Start  float64
	Length float64
}

// End returns the time the clip stops, in source seconds.
func (w Window) End() float64 {
	return w.Start + w.Length
}

func (w Window) String() string {
	return fmt.Sprintf("%s - %s (%.2fs)", timeutil.FormatTime(w.Start), timeutil.FormatTime(w.End()), w.Length)
}

// PickWindow chooses a clip length uniformly from [minLen, maxLen] whole
// seconds and a start uniformly from [0, sourceDuration-length].
// Sources shorter than the chosen length start at 0 and the length is cut
// to what remains, so the window never runs past sourceDuration.
func PickWindow(rng *rand.Rand, sourceDuration float64, minLen, maxLen int) Window {
	if maxLen < minLen {
		maxLen = minLen
	}
	length := float64(minLen + rng.IntN(maxLen-minLen+1))

	start := rng.Float64() * (sourceDuration - length)
	return Clamp(Window{Start: start, Length: length}, sourceDuration)
}

// Clamp fits w inside [0, sourceDuration].
func Clamp(w Window, sourceDuration float64) Window {
	if w.Start < 0 {
		w.Start = 0
	}
	if w.Start > sourceDuration {
		w.Start = sourceDuration
	}
	if w.Start+w.Length > sourceDuration {
		w.Length = sourceDuration - w.Start
	}
	return w
}

// WindowAt builds a window with a fixed start and a random length, clamped
// to the source.
func WindowAt(rng *rand.Rand, start, sourceDuration float64, minLen, maxLen int) Window {
	if maxLen < minLen {
		maxLen = minLen
	}
	length := float64(minLen + rng.IntN(maxLen-minLen+1))
	return Clamp(Window{Start: start, Length: length}, sourceDuration)
}
